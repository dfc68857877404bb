package storage

import (
	"context"
	"fmt"
)

// Родитель NULL сравнивается как 0: корни образуют свою группу соседей.
const parentMatch = `COALESCE(parent_id, 0) = COALESCE(CAST($2 AS BIGINT), 0)`

func (c *Catalog) FindCategoryByName(ctx context.Context, name string, parentID *int64) (int64, bool, error) {
	id, ok, err := c.queryID(ctx,
		`SELECT id FROM category WHERE name = $1 AND `+parentMatch+` ORDER BY id LIMIT 1`, name, parentID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to find category %q: %w", name, err)
	}
	return id, ok, nil
}

func (c *Catalog) FindCategoryByNormName(ctx context.Context, nameNorm string, parentID *int64) (int64, bool, error) {
	id, ok, err := c.queryID(ctx,
		`SELECT id FROM category WHERE name_norm = $1 AND `+parentMatch+` ORDER BY id LIMIT 1`, nameNorm, parentID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to find category %q: %w", nameNorm, err)
	}
	return id, ok, nil
}

// InsertCategory вставляет узел, если среди соседей нет узла с тем же name_norm.
func (c *Catalog) InsertCategory(ctx context.Context, name, nameNorm string, parentID *int64) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO category (name, name_norm, parent_id) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		name, nameNorm, parentID)
	if err != nil {
		return fmt.Errorf("failed to insert category %q: %w", name, err)
	}
	return nil
}

func (c *Catalog) LookupCategoryMap(ctx context.Context, supplierID int64, pathKey string) (int64, bool, error) {
	id, ok, err := c.queryID(ctx,
		`SELECT category_id FROM supplier_category_map WHERE supplier_id = $1 AND path_key = $2`,
		supplierID, pathKey)
	if err != nil {
		return 0, false, fmt.Errorf("failed to lookup category map: %w", err)
	}
	return id, ok, nil
}

func (c *Catalog) SaveCategoryMap(ctx context.Context, supplierID int64, pathKey string, categoryID int64) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO supplier_category_map (supplier_id, path_key, category_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (supplier_id, path_key) DO UPDATE SET category_id = excluded.category_id`,
		supplierID, pathKey, categoryID)
	if err != nil {
		return fmt.Errorf("failed to save category map: %w", err)
	}
	return nil
}
