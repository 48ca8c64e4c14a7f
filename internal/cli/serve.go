package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/terraincognita07/sitr/internal/api"
	"github.com/terraincognita07/sitr/internal/app"
	"github.com/terraincognita07/sitr/internal/config"
	"github.com/terraincognita07/sitr/internal/db"
	"github.com/terraincognita07/sitr/internal/logger"
	"github.com/terraincognita07/sitr/internal/metrics"
	ucli "github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API (configured from SITR_DB_PATH, PORT, TZ, LOG_LEVEL, LOG_PRETTY)",
		Action: func(ctx context.Context, cmd *ucli.Command) error {
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if dbPath := cmd.String("db"); dbPath != "" {
				cfg.DBPath = dbPath
			}
			if cmd.IsSet("log-level") {
				cfg.LogLevel = cmd.String("log-level")
			}
			return runServer(ctx, cfg)
		},
	}
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, cfg *config.Config) error {
	location, err := cfg.Location()
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty && !cfg.IsProduction(),
	})

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		if err := db.CloseSQLite(database); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	all := app.NewServices(database, metrics.NewCollector(registry), log.With().Str("component", "engine").Logger())
	handler := api.NewHandler(all, location, log.With().Str("component", "http").Logger())
	server := api.NewServer(handler, registry)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().
		Str("addr", cfg.ListenAddress()).
		Str("db", cfg.DBPath).
		Str("tz", location.String()).
		Msg("sitr listening")
	if err := server.Listen(cfg.ListenAddress()); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
