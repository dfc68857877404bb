package migration

import (
	"catalog_importer/pkg/logger"
	"database/sql"
	"fmt"
)

type MigrationInterface interface {
	UpMigration(*sql.DB) error
}

// Apply применяет миграции строго по порядку и останавливается на первой ошибке.
func Apply(db *sql.DB, log logger.Logger, migrations []MigrationInterface) error {
	for i, m := range migrations {
		if err := m.UpMigration(db); err != nil {
			log.Error("Migration #%d failed: %v", i+1, err)
			return fmt.Errorf("migration #%d: %w", i+1, err)
		}
	}
	log.Log("%d migrations checked", len(migrations))
	return nil
}
