package storage

import (
	"catalog_importer/internal/core/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrSupplierNotFound = errors.New("supplier not found")

func (c *Catalog) SupplierByCode(ctx context.Context, code string) (*models.Supplier, error) {
	var s models.Supplier
	err := c.db.QueryRowContext(ctx,
		`SELECT id, code, name FROM supplier WHERE code = $1`, code).Scan(&s.ID, &s.Code, &s.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSupplierNotFound, code)
		}
		return nil, fmt.Errorf("failed to get supplier %s: %w", code, err)
	}
	return &s, nil
}
