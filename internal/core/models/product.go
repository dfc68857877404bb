package models

import (
	"encoding/json"
	"github.com/shopspring/decimal"
	"time"
)

// ProductInput входные данные для upsert канонического товара.
// Идентичность: сначала barcode, затем SKU, затем ранее связанное предложение OfferKey.
type ProductInput struct {
	SKU         *string
	Barcode     *string
	Title       string
	BrandID     *int64
	Description *string
	// OfferKey используется, только если нет ни barcode, ни SKU.
	OfferKey *OfferKey
}

// OfferKey естественный ключ предложения поставщика.
type OfferKey struct {
	SupplierID  int64
	SupplierSKU string
}

// Product канонический товар каталога, строка таблицы product.
type Product struct {
	ID          int64     `json:"id"`
	SKU         *string   `json:"sku,omitempty"`
	Barcode     *string   `json:"barcode,omitempty"`
	Title       string    `json:"title"`
	BrandID     *int64    `json:"brand_id,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Offer строка supplier_offer. Data хранит исходную запись целиком.
type Offer struct {
	SupplierID  int64
	SupplierSKU string
	ProductID   int64
	Title       *string
	Price       decimal.NullDecimal
	Currency    *string
	Stock       *int64
	URL         *string
	Data        json.RawMessage
}
