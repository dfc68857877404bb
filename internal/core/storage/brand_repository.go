package storage

import (
	"context"
	"fmt"
)

// UpsertBrand создает бренд при первом упоминании и возвращает его id.
// Пустое имя не ошибка: бренд просто не указан.
func (c *Catalog) UpsertBrand(ctx context.Context, name *string) (*int64, error) {
	name = trimmed(name)
	if name == nil {
		return nil, nil
	}

	id, err := c.insertIgnoreThenSelect(ctx,
		`INSERT INTO brand (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, []interface{}{*name},
		`SELECT id FROM brand WHERE name = $1`, []interface{}{*name},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert brand %q: %w", *name, err)
	}
	return &id, nil
}
