package storage

import (
	"catalog_importer/internal/core/models"
	"context"
	"fmt"
	"github.com/lib/pq"
)

// UpsertProduct находит товар по barcode, затем по SKU (затем по уже связанному
// предложению поставщика) и перезаписывает title, brand и description. Если ничего
// не найдено, вставляет новый товар. Конфликт уникальности при вставке значит, что
// параллельный импорт успел создать ту же строку; тогда поиск повторяется один раз.
func (c *Catalog) UpsertProduct(ctx context.Context, in models.ProductInput) (int64, error) {
	id, err := c.upsertProductOnce(ctx, in)
	if err != nil && c.dialect.IsUniqueViolation(err) {
		id, err = c.upsertProductOnce(ctx, in)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to upsert product %q: %w", in.Title, err)
	}
	return id, nil
}

func (c *Catalog) upsertProductOnce(ctx context.Context, in models.ProductInput) (int64, error) {
	barcode := trimmed(in.Barcode)
	sku := trimmed(in.SKU)
	description := trimmed(in.Description)

	if barcode != nil {
		id, ok, err := c.queryID(ctx, `SELECT id FROM product WHERE barcode = $1`, *barcode)
		if err != nil {
			return 0, err
		}
		if ok {
			return id, c.updateProduct(ctx, id, in.Title, in.BrandID, description, nil)
		}
	}

	if sku != nil {
		id, ok, err := c.queryID(ctx, `SELECT id FROM product WHERE sku = $1`, *sku)
		if err != nil {
			return 0, err
		}
		if ok {
			return id, c.updateProduct(ctx, id, in.Title, in.BrandID, description, barcode)
		}
	}

	if barcode == nil && sku == nil && in.OfferKey != nil {
		id, ok, err := c.ProductIDByOffer(ctx, *in.OfferKey)
		if err != nil {
			return 0, err
		}
		if ok {
			return id, c.updateProduct(ctx, id, in.Title, in.BrandID, description, nil)
		}
	}

	var id int64
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO product (sku, title, brand_id, barcode, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		sku, in.Title, in.BrandID, barcode, description).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// updateProduct перезаписывает изменяемые поля. barcode ставится, только если передан.
func (c *Catalog) updateProduct(ctx context.Context, id int64, title string, brandID *int64, description, barcode *string) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE product
		SET title = $1, brand_id = $2, description = $3, barcode = COALESCE($4, barcode), updated_at = CURRENT_TIMESTAMP
		WHERE id = $5`,
		title, brandID, description, barcode, id)
	return err
}

// ProductIDByOffer возвращает товар, с которым уже связано предложение поставщика.
func (c *Catalog) ProductIDByOffer(ctx context.Context, key models.OfferKey) (int64, bool, error) {
	id, ok, err := c.queryID(ctx,
		`SELECT product_id FROM supplier_offer WHERE supplier_id = $1 AND supplier_sku = $2 AND product_id IS NOT NULL`,
		key.SupplierID, key.SupplierSKU)
	if err != nil {
		return 0, false, fmt.Errorf("failed to find product by offer: %w", err)
	}
	return id, ok, nil
}

// LinkProductToCategories идемпотентно связывает товар с категориями.
func (c *Catalog) LinkProductToCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	if c.dialect.SupportsArrays {
		_, err := c.db.ExecContext(ctx, `
			INSERT INTO product_category (product_id, category_id)
			SELECT $1, unnest($2::bigint[])
			ON CONFLICT DO NOTHING`,
			productID, pq.Array(categoryIDs))
		if err != nil {
			return fmt.Errorf("failed to link product %d to categories: %w", productID, err)
		}
		return nil
	}

	for _, categoryID := range categoryIDs {
		_, err := c.db.ExecContext(ctx,
			`INSERT INTO product_category (product_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			productID, categoryID)
		if err != nil {
			return fmt.Errorf("failed to link product %d to category %d: %w", productID, categoryID, err)
		}
	}
	return nil
}
