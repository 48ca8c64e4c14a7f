package db

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/terraincognita07/sitr/internal/logger"
	embeddedmigrations "github.com/terraincognita07/sitr/migrations"
	"gorm.io/gorm"
)

var (
	migrationFileName   = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.sql$`)
	addColumnStatement  = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+([^\s]+)\s+ADD\s+COLUMN\s+([^\s]+)\b`)
	errEmptyMigration   = errors.New("migration has no SQL statements")
	schemaMigrationsDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
)

type migrationFile struct {
	Version string
	Order   int
	Name    string
	SQL     string
}

// MigrationRecord is one row of schema_migrations.
type MigrationRecord struct {
	Version   string `gorm:"column:version" json:"version"`
	Name      string `gorm:"column:name" json:"name"`
	AppliedAt string `gorm:"column:applied_at" json:"applied_at"`
}

func applyEmbeddedMigrations(database *gorm.DB) error {
	if err := database.Exec(schemaMigrationsDDL).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	files, err := loadMigrationFiles(embeddedmigrations.Files)
	if err != nil {
		return err
	}

	applied, err := AppliedMigrations(database)
	if err != nil {
		return err
	}
	done := make(map[string]struct{}, len(applied))
	for _, record := range applied {
		done[record.Version] = struct{}{}
	}

	log := logger.Get()
	for _, file := range files {
		if _, ok := done[file.Version]; ok {
			continue
		}
		if err := applyMigration(database, file); err != nil {
			return err
		}
		log.Info().Str("migration", file.Name).Msg("applied schema migration")
	}
	return nil
}

// AppliedMigrations lists recorded migrations in version order.
func AppliedMigrations(database *gorm.DB) ([]MigrationRecord, error) {
	records := make([]MigrationRecord, 0)
	if err := database.Raw(
		`SELECT version, name, applied_at FROM schema_migrations ORDER BY version ASC`,
	).Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	return records, nil
}

func loadMigrationFiles(source fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(source, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	files := make([]migrationFile, 0, len(entries))
	byVersion := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		matches := migrationFileName.FindStringSubmatch(name)
		if matches == nil {
			continue
		}

		version := matches[1]
		order, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", name, err)
		}
		if other, exists := byVersion[version]; exists {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, other, name)
		}
		byVersion[version] = name

		raw, err := fs.ReadFile(source, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		files = append(files, migrationFile{Version: version, Order: order, Name: name, SQL: string(raw)})
	}

	slices.SortFunc(files, func(a, b migrationFile) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), strings.Compare(a.Name, b.Name))
	})
	return files, nil
}

func applyMigration(database *gorm.DB, file migrationFile) error {
	return database.Transaction(func(tx *gorm.DB) error {
		statements := splitSQLStatements(file.SQL)
		if len(statements) == 0 {
			return fmt.Errorf("migration %s: %w", file.Name, errEmptyMigration)
		}

		for _, statement := range statements {
			exists, err := addsExistingColumn(tx, statement)
			if err != nil {
				return fmt.Errorf("inspect migration %s: %w", file.Name, err)
			}
			if exists {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", file.Name, statement, err)
			}
		}

		if err := tx.Exec(
			`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`,
			file.Version,
			file.Name,
		).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", file.Name, err)
		}
		return nil
	})
}

// splitSQLStatements drops "--" comment lines and splits on semicolons.
// Migrations must not put semicolons inside string literals.
func splitSQLStatements(sqlText string) []string {
	var body strings.Builder
	for line := range strings.Lines(sqlText) {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		body.WriteString(line)
	}

	statements := make([]string, 0)
	for part := range strings.SplitSeq(body.String(), ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// addsExistingColumn reports whether statement is an ADD COLUMN for a column
// that is already there, which happens on databases patched by hand.
func addsExistingColumn(database *gorm.DB, statement string) (bool, error) {
	matches := addColumnStatement.FindStringSubmatch(statement)
	if matches == nil {
		return false, nil
	}

	table := unquoteIdentifier(matches[1])
	column := unquoteIdentifier(matches[2])
	columns, err := tableColumns(database, table)
	if err != nil {
		return false, err
	}
	_, exists := columns[strings.ToLower(column)]
	return exists, nil
}

func tableColumns(database *gorm.DB, table string) (map[string]struct{}, error) {
	query := fmt.Sprintf(`PRAGMA table_info("%s")`, strings.ReplaceAll(table, `"`, `""`))

	var rows []struct {
		Name string `gorm:"column:name"`
	}
	if err := database.Raw(query).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load table_info for %s: %w", table, err)
	}

	columns := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		columns[strings.ToLower(strings.TrimSpace(row.Name))] = struct{}{}
	}
	return columns, nil
}

func unquoteIdentifier(identifier string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(identifier), "\"`[]"))
}
