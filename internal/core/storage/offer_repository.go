package storage

import (
	"catalog_importer/internal/core/models"
	"context"
	"fmt"
	"strings"
)

// UpsertSupplierOffer одна атомарная вставка-или-обновление по (supplier_id, supplier_sku).
// Цена, валюта, остаток и data всегда берутся из последнего импорта, а title и url
// сохраняются прежними, если в новой записи их нет.
func (c *Catalog) UpsertSupplierOffer(ctx context.Context, offer models.Offer) error {
	if strings.TrimSpace(offer.SupplierSKU) == "" {
		return fmt.Errorf("supplier offer without supplier sku (supplier %d)", offer.SupplierID)
	}

	var data interface{}
	if len(offer.Data) > 0 {
		data = string(offer.Data)
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO supplier_offer (supplier_id, supplier_sku, product_id, title, price, currency, stock, url, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (supplier_id, supplier_sku) DO UPDATE SET
			product_id = excluded.product_id,
			title = COALESCE(excluded.title, supplier_offer.title),
			price = excluded.price,
			currency = excluded.currency,
			stock = excluded.stock,
			url = COALESCE(excluded.url, supplier_offer.url),
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP`,
		offer.SupplierID, offer.SupplierSKU, offer.ProductID, trimmed(offer.Title),
		offer.Price, offer.Currency, offer.Stock, trimmed(offer.URL), data)
	if err != nil {
		return fmt.Errorf("failed to upsert offer %d/%s: %w", offer.SupplierID, offer.SupplierSKU, err)
	}
	return nil
}
