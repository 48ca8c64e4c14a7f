package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/sitr/internal/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqliteDSNOptions turns on foreign keys, waits on a locked file instead of
// failing, and starts write transactions with BEGIN IMMEDIATE so that two
// processes tracking the same user serialize on the database lock.
const sqliteDSNOptions = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

func OpenSQLite(dbPath string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?%s", dbPath, sqliteDSNOptions)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(
			gormLogWriter{logger: logger.Get().With().Str("component", "gorm").Logger()},
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyEmbeddedMigrations(database); err != nil {
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}

	return database, nil
}

func CloseSQLite(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("open sql db: %w", err)
	}
	return sqlDB.Close()
}

type gormLogWriter struct {
	logger zerolog.Logger
}

func (writer gormLogWriter) Printf(format string, args ...any) {
	writer.logger.Warn().Msgf(format, args...)
}
