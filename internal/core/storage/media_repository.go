package storage

import (
	"context"
	"fmt"
	"strings"
)

// AddImages сохраняет картинки товара с position, равным индексу в списке.
// Пара (product_id, url) уникальна: повторный импорт того же фида обновляет
// position, а не плодит дубликаты.
func (c *Catalog) AddImages(ctx context.Context, productID int64, urls []string) error {
	position := 0
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		_, err := c.db.ExecContext(ctx, `
			INSERT INTO image (product_id, url, position) VALUES ($1, $2, $3)
			ON CONFLICT (product_id, url) DO UPDATE SET position = excluded.position`,
			productID, url, position)
		if err != nil {
			return fmt.Errorf("failed to add image %s for product %d: %w", url, productID, err)
		}
		position++
	}
	return nil
}
