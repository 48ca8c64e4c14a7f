package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/sethvargo/go-envconfig"
)

// Config is the server configuration read from the environment.
type Config struct {
	DBPath    string `env:"SITR_DB_PATH, default=data/sitr.db"`
	Port      string `env:"PORT,         default=8080"`
	Timezone  string `env:"TZ,           default=UTC"`
	LogLevel  string `env:"LOG_LEVEL,    default=info"`
	LogPretty bool   `env:"LOG_PRETTY,   default=false"`
	Env       string `env:"SITR_ENV,     default=development"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	if cfg.DBPath == "" {
		return nil, errors.New("config: SITR_DB_PATH must not be empty")
	}
	if _, err := parsePort(cfg.Port); err != nil {
		return nil, err
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("config: invalid PORT %q: %w", raw, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("config: PORT %d out of range", port)
	}
	return port, nil
}

func (cfg *Config) ListenAddress() string {
	return ":" + strings.TrimSpace(cfg.Port)
}

func (cfg *Config) Location() (*time.Location, error) {
	return LoadLocation(cfg.Timezone)
}

func (cfg *Config) IsProduction() bool {
	return strings.EqualFold(cfg.Env, "production")
}

// LoadLocation resolves an IANA zone name. Empty means UTC.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: unknown timezone %q: %w", name, err)
	}
	return location, nil
}
