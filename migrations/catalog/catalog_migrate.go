package catalog

import (
	"catalog_importer/internal/core/category"
	"catalog_importer/migrations/infrastructure"
	"catalog_importer/pkg/dbconnect"
	"catalog_importer/pkg/dbconnect/migration"
	"catalog_importer/pkg/logger"
	"database/sql"
	"fmt"
)

const (
	BaseTablesMigration          = "catalog.base_tables"
	ProductBarcodeMigration      = "catalog.product_barcode_unique"
	CategoryNameNormMigration    = "catalog.category_name_norm"
	CategorySiblingsMigration    = "catalog.category_unique_siblings"
	SupplierCategoryMapMigration = "catalog.supplier_category_map"
	ImageUniqueURLMigration      = "catalog.image_unique_url"
	SeedSuppliersMigration       = "catalog.seed_suppliers"
)

// Migrations возвращает полный упорядоченный список миграций каталога.
// Порядок менять нельзя: каждая следующая опирается на предыдущие.
func Migrations(d dbconnect.Dialect, log logger.Logger) []migration.MigrationInterface {
	named := func(name string, after func(tx *sql.Tx) error, statements ...string) migration.MigrationInterface {
		return &infrastructure.SQLMigration{Name: name, Dialect: d, Statements: statements, After: after, Log: log}
	}

	return []migration.MigrationInterface{
		&infrastructure.MigrationsSchema{Dialect: d},
		named(BaseTablesMigration, nil, baseTables...),
		named(ProductBarcodeMigration, nil,
			`CREATE UNIQUE INDEX IF NOT EXISTS product_barcode_uq ON product (barcode)`,
		),
		named(CategoryNameNormMigration, backfillCategoryNames,
			`ALTER TABLE category ADD COLUMN name_norm TEXT`,
		),
		named(CategorySiblingsMigration, nil,
			`CREATE UNIQUE INDEX IF NOT EXISTS category_parent_name_norm_uq ON category ((COALESCE(parent_id, 0)), name_norm)`,
			`CREATE INDEX IF NOT EXISTS category_parent_name_idx ON category (parent_id, name)`,
		),
		named(SupplierCategoryMapMigration, nil,
			`CREATE TABLE IF NOT EXISTS supplier_category_map (
				supplier_id BIGINT NOT NULL REFERENCES supplier(id),
				path_key TEXT NOT NULL,
				category_id BIGINT NOT NULL REFERENCES category(id),
				created_at {{timestamp}} DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (supplier_id, path_key)
			)`,
		),
		named(ImageUniqueURLMigration, nil,
			`DELETE FROM image WHERE id NOT IN (SELECT MIN(id) FROM image GROUP BY product_id, url)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS image_product_url_uq ON image (product_id, url)`,
		),
		named(SeedSuppliersMigration, nil,
			`INSERT INTO supplier (code, name) VALUES ('generalclimate', 'General Climate') ON CONFLICT (code) DO NOTHING`,
			`INSERT INTO supplier (code, name) VALUES ('euroklimate', 'Euroklimat (EK)') ON CONFLICT (code) DO NOTHING`,
			`INSERT INTO supplier (code, name) VALUES ('mhi', 'Mitsubishi Heavy Industries (MHI)') ON CONFLICT (code) DO NOTHING`,
		),
	}
}

var baseTables = []string{
	`CREATE TABLE IF NOT EXISTS supplier (
		id {{id}},
		code VARCHAR(50) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		created_at {{timestamp}} DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS brand (
		id {{id}},
		name TEXT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS category (
		id {{id}},
		external_code TEXT,
		name TEXT NOT NULL,
		parent_id BIGINT REFERENCES category(id)
	)`,
	`CREATE TABLE IF NOT EXISTS product (
		id {{id}},
		sku TEXT UNIQUE,
		title TEXT NOT NULL,
		description TEXT,
		brand_id BIGINT REFERENCES brand(id),
		barcode TEXT,
		created_at {{timestamp}} DEFAULT CURRENT_TIMESTAMP,
		updated_at {{timestamp}} DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS product_category (
		product_id BIGINT NOT NULL REFERENCES product(id),
		category_id BIGINT NOT NULL REFERENCES category(id),
		PRIMARY KEY (product_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS supplier_offer (
		id {{id}},
		supplier_id BIGINT NOT NULL REFERENCES supplier(id),
		supplier_sku TEXT NOT NULL,
		product_id BIGINT REFERENCES product(id),
		title TEXT,
		price NUMERIC(14, 2),
		currency VARCHAR(8),
		stock BIGINT,
		url TEXT,
		data {{json}},
		updated_at {{timestamp}} DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (supplier_id, supplier_sku)
	)`,
	`CREATE TABLE IF NOT EXISTS property (
		id {{id}},
		name TEXT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product_property (
		product_id BIGINT NOT NULL REFERENCES product(id),
		property_id BIGINT NOT NULL REFERENCES property(id),
		value_text TEXT,
		value_number DOUBLE PRECISION,
		value_json {{json}},
		PRIMARY KEY (product_id, property_id)
	)`,
	`CREATE TABLE IF NOT EXISTS image (
		id {{id}},
		product_id BIGINT NOT NULL REFERENCES product(id),
		url TEXT NOT NULL,
		position INTEGER DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS raw_import (
		id {{id}},
		supplier_id BIGINT NOT NULL REFERENCES supplier(id),
		batch_id TEXT NOT NULL,
		payload {{json}} NOT NULL,
		created_at {{timestamp}} DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS import_log (
		id {{id}},
		supplier_id BIGINT NOT NULL REFERENCES supplier(id),
		batch_id TEXT NOT NULL,
		status VARCHAR(16) NOT NULL,
		message TEXT,
		created_at {{timestamp}} DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS raw_import_batch_idx ON raw_import (supplier_id, batch_id)`,
	`CREATE INDEX IF NOT EXISTS import_log_batch_idx ON import_log (supplier_id, batch_id)`,
}

// backfillCategoryNames заполняет name_norm для категорий, созданных до появления колонки.
func backfillCategoryNames(tx *sql.Tx) error {
	rows, err := tx.Query(`SELECT id, name FROM category WHERE name_norm IS NULL`)
	if err != nil {
		return fmt.Errorf("failed to select categories: %w", err)
	}

	type pending struct {
		id   int64
		name string
	}
	var toUpdate []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.name); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan category: %w", err)
		}
		toUpdate = append(toUpdate, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error occurred during row iteration: %w", err)
	}
	rows.Close()

	for _, p := range toUpdate {
		if _, err := tx.Exec(`UPDATE category SET name_norm = $1 WHERE id = $2`, category.NormalizeName(p.name), p.id); err != nil {
			return fmt.Errorf("failed to backfill category %d: %w", p.id, err)
		}
	}
	return nil
}
