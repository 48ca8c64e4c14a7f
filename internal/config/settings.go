package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyDBPath           = "db_path"
	KeyTimezone         = "timezone"
	KeyCurrentUserID    = "current_user_id"
	KeyCurrentUserEmail = "current_user_email"
)

var settingsKeys = []string{KeyDBPath, KeyTimezone, KeyCurrentUserID, KeyCurrentUserEmail}

// Settings is the per-user CLI settings file.
type Settings struct {
	v    *viper.Viper
	path string
}

// DefaultSettingsPath returns $XDG_CONFIG_HOME/sitr/sitr.yml, falling back to
// the platform config directory under the home directory.
func DefaultSettingsPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("error getting user home directory: %w", err)
		}
		if runtime.GOOS == "windows" {
			configHome = filepath.Join(homeDir, "AppData", "Roaming")
		} else {
			configHome = filepath.Join(homeDir, ".config")
		}
	}
	return filepath.Join(configHome, "sitr", "sitr.yml"), nil
}

// LoadSettings reads the settings file at path, creating it with default
// values when it does not exist yet.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	v.SetDefault(KeyDBPath, filepath.Join(filepath.Dir(path), "sitr.db"))
	v.SetDefault(KeyTimezone, "UTC")
	v.SetDefault(KeyCurrentUserID, 0)
	v.SetDefault(KeyCurrentUserEmail, "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := v.WriteConfigAs(path); err != nil {
			return nil, fmt.Errorf("error creating config file: %w", err)
		}
	}
	return &Settings{v: v, path: path}, nil
}

func (settings *Settings) Path() string {
	return settings.path
}

func (settings *Settings) DBPath() string {
	return settings.v.GetString(KeyDBPath)
}

func (settings *Settings) Location() (*time.Location, error) {
	return LoadLocation(settings.v.GetString(KeyTimezone))
}

func (settings *Settings) CurrentUserID() uint {
	return settings.v.GetUint(KeyCurrentUserID)
}

func (settings *Settings) CurrentUserEmail() string {
	return settings.v.GetString(KeyCurrentUserEmail)
}

// SelectUser records the current user and saves the file.
func (settings *Settings) SelectUser(userID uint, email string) error {
	settings.v.Set(KeyCurrentUserID, userID)
	settings.v.Set(KeyCurrentUserEmail, email)
	return settings.Save()
}

// ClearUser forgets the current user when it matches userID.
func (settings *Settings) ClearUser(userID uint) error {
	if settings.CurrentUserID() != userID {
		return nil
	}
	return settings.SelectUser(0, "")
}

// Set validates and stores one known key. Call Save to persist it.
func (settings *Settings) Set(key string, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	switch key {
	case KeyDBPath:
		if value == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
		settings.v.Set(key, value)
	case KeyTimezone:
		if _, err := LoadLocation(value); err != nil {
			return err
		}
		settings.v.Set(key, value)
	case KeyCurrentUserID:
		userID, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s must be a positive integer: %w", key, err)
		}
		settings.v.Set(key, uint(userID))
	case KeyCurrentUserEmail:
		settings.v.Set(key, value)
	default:
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(settingsKeys, ", "))
	}
	return nil
}

func (settings *Settings) Save() error {
	if err := settings.v.WriteConfigAs(settings.path); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Values returns every known key with its current value in display order.
func (settings *Settings) Values() [][2]string {
	values := make([][2]string, 0, len(settingsKeys))
	for _, key := range settingsKeys {
		values = append(values, [2]string{key, settings.v.GetString(key)})
	}
	return values
}
