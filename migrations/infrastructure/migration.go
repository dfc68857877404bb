package infrastructure

import (
	"catalog_importer/pkg/dbconnect"
	"catalog_importer/pkg/logger"
	"database/sql"
	"fmt"
)

const RegistryTable = "schema_migrations"

// MigrationsSchema создает таблицу учета примененных миграций.
type MigrationsSchema struct {
	Dialect dbconnect.Dialect
}

func (m *MigrationsSchema) UpMigration(db *sql.DB) error {
	query := m.Dialect.Expand(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id {{id}},
			name VARCHAR(255) UNIQUE NOT NULL,
			time {{timestamp}} NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`)
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create %s table: %w", RegistryTable, err)
	}
	return nil
}

// SQLMigration именованная миграция: набор DDL/DML выражений и необязательный шаг
// на Go (например, заполнение новой колонки). Выполняется в одной транзакции вместе
// с отметкой в schema_migrations, поэтому повторный запуск безопасен.
type SQLMigration struct {
	Name       string
	Dialect    dbconnect.Dialect
	Statements []string
	After      func(tx *sql.Tx) error
	Log        logger.Logger
}

func (m *SQLMigration) UpMigration(db *sql.DB) error {
	done, err := CheckAndSkipMigration(db, m.Name)
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	if err := ExecuteAndMarkMigration(db, m.Name, m.Dialect, m.Statements, m.After); err != nil {
		return err
	}
	if m.Log != nil {
		m.Log.Log("Migration '%s' completed successfully.", m.Name)
	}
	return nil
}

func CheckAndSkipMigration(db *sql.DB, migrationName string) (bool, error) {
	var migrationExists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)", migrationName).Scan(&migrationExists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return migrationExists, nil
}

func ExecuteAndMarkMigration(db *sql.DB, migrationName string, dialect dbconnect.Dialect, statements []string, after func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration '%s': %w", migrationName, err)
	}
	defer tx.Rollback()

	for i, stmt := range statements {
		if _, err := tx.Exec(dialect.Expand(stmt)); err != nil {
			return fmt.Errorf("failed to execute migration '%s' statement %d: %w", migrationName, i+1, err)
		}
	}
	if after != nil {
		if err := after(tx); err != nil {
			return fmt.Errorf("failed to run migration '%s' step: %w", migrationName, err)
		}
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (name, time) VALUES ($1, CURRENT_TIMESTAMP)", migrationName); err != nil {
		return fmt.Errorf("failed to mark migration '%s' as complete: %w", migrationName, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration '%s': %w", migrationName, err)
	}
	return nil
}
