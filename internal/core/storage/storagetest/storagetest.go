// Package storagetest поднимает временную SQLite базу с полным набором миграций.
package storagetest

import (
	"catalog_importer/config"
	"catalog_importer/internal/core/storage"
	"catalog_importer/migrations/catalog"
	"catalog_importer/pkg/dbconnect/migration"
	"catalog_importer/pkg/dbconnect/sqlite"
	"catalog_importer/pkg/logger"
	"path/filepath"
	"testing"
)

// Open возвращает хранилище на новом файле в t.TempDir(). Поставщики
// generalclimate, euroklimate и mhi уже заведены миграцией.
func Open(t testing.TB) *storage.Catalog {
	t.Helper()

	conn := sqlite.NewSQLiteConnector(&config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "catalog.db")}, logger.NewNop())
	db, err := conn.Connect()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := migration.Apply(db, logger.NewNop(), catalog.Migrations(conn.Dialect(), logger.NewNop())); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return storage.NewCatalog(db, conn.Dialect())
}

// Count возвращает число строк в таблице.
func Count(t testing.TB, c *storage.Catalog, table string) int {
	t.Helper()

	var n int
	if err := c.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// SupplierID возвращает id поставщика по коду.
func SupplierID(t testing.TB, c *storage.Catalog, code string) int64 {
	t.Helper()

	var id int64
	if err := c.DB().QueryRow("SELECT id FROM supplier WHERE code = $1", code).Scan(&id); err != nil {
		t.Fatalf("supplier %s: %v", code, err)
	}
	return id
}
