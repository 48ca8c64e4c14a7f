// Package cli is the sitr command line. Every command except serve opens the
// SQLite file directly and drives the same services as the HTTP server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/terraincognita07/sitr/internal/app"
	"github.com/terraincognita07/sitr/internal/config"
	"github.com/terraincognita07/sitr/internal/db"
	"github.com/terraincognita07/sitr/internal/logger"
	"github.com/terraincognita07/sitr/internal/metrics"
	"github.com/terraincognita07/sitr/internal/services"
	ucli "github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

const clockLayout = "15:04"

var errNoUserSelected = errors.New("no user selected; run 'sitr user select EMAIL' first")

// NewCommand builds the root command writing its output to out.
func NewCommand(out io.Writer) *ucli.Command {
	return &ucli.Command{
		Name:      "sitr",
		Usage:     "Simple time tracker for workdays, projects and breaks",
		Writer:    out,
		ErrWriter: out,
		Flags: []ucli.Flag{
			&ucli.StringFlag{Name: "config", Usage: "settings file (default $XDG_CONFIG_HOME/sitr/sitr.yml)"},
			&ucli.StringFlag{Name: "db", Usage: "SQLite database path, overrides the settings file"},
			&ucli.StringFlag{Name: "log-level", Value: "warn", Usage: "trace, debug, info, warn or error"},
		},
		Commands: []*ucli.Command{
			serveCommand(),
			userCommand(),
			startDayCommand(),
			endDayCommand(),
			startCommand(),
			endCommand(),
			breakCommand(),
			continueCommand(),
			projectCommand(),
			statusCommand(),
			reportCommand(),
			configCommand(),
		},
	}
}

// Run executes the command line in args, the program name included.
func Run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 1 {
		args = append(args, "--help")
	}
	return NewCommand(out).Run(ctx, args)
}

// session is what one command invocation works with.
type session struct {
	settings *config.Settings
	database *gorm.DB
	services *app.Services
	location *time.Location
	out      io.Writer
}

func loadSettings(cmd *ucli.Command) (*config.Settings, error) {
	path := cmd.String("config")
	if path == "" {
		defaultPath, err := config.DefaultSettingsPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	return config.LoadSettings(path)
}

func openSession(cmd *ucli.Command) (*session, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	location, err := settings.Location()
	if err != nil {
		return nil, err
	}

	log := logger.Init(logger.Options{Level: cmd.String("log-level")})

	dbPath := cmd.String("db")
	if dbPath == "" {
		dbPath = settings.DBPath()
	}
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	return &session{
		settings: settings,
		database: database,
		services: app.NewServices(database, metrics.NewCollector(prometheus.NewRegistry()), log.With().Str("component", "cli").Logger()),
		location: location,
		out:      cmd.Root().Writer,
	}, nil
}

func (s *session) close() {
	if err := db.CloseSQLite(s.database); err != nil {
		log := logger.Get()
		log.Warn().Err(err).Msg("close database")
	}
}

func (s *session) currentUserID() (uint, error) {
	userID := s.settings.CurrentUserID()
	if userID == 0 {
		return 0, errNoUserSelected
	}
	return userID, nil
}

// withSession wraps an action that needs the database.
func withSession(fn func(ctx context.Context, cmd *ucli.Command, s *session) error) ucli.ActionFunc {
	return func(ctx context.Context, cmd *ucli.Command) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		return fn(ctx, cmd, s)
	}
}

// withUser wraps an action that works on the selected user.
func withUser(fn func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error) ucli.ActionFunc {
	return withSession(func(ctx context.Context, cmd *ucli.Command, s *session) error {
		userID, err := s.currentUserID()
		if err != nil {
			return err
		}
		return fn(ctx, cmd, s, userID)
	})
}

func (s *session) printResult(result services.OperationResult) {
	mark := "✓"
	if !result.Success {
		mark = "!"
	}
	fmt.Fprintf(s.out, "%s %s at %s\n", mark, result.Message, result.Timestamp.In(s.location).Format(clockLayout))
}

func (s *session) printNote(note string) {
	fmt.Fprintf(s.out, "Note: %s\n", note)
}
