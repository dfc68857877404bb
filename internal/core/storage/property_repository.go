package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/shopspring/decimal"
	"math"
	"strings"
)

// SetProductProperty записывает значение свойства товара. Свойство создается при
// первом упоминании. Значение попадает ровно в одну из колонок по своему типу:
// строка в value_text, число в value_number, все остальное в value_json.
func (c *Catalog) SetProductProperty(ctx context.Context, productID int64, name string, value interface{}) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("property name is empty")
	}

	text, number, js, err := routePropertyValue(value)
	if err != nil {
		return fmt.Errorf("property %q: %w", name, err)
	}

	propertyID, err := c.insertIgnoreThenSelect(ctx,
		`INSERT INTO property (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, []interface{}{name},
		`SELECT id FROM property WHERE name = $1`, []interface{}{name},
	)
	if err != nil {
		return fmt.Errorf("failed to upsert property %q: %w", name, err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO product_property (product_id, property_id, value_text, value_number, value_json)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, property_id) DO UPDATE SET
			value_text = excluded.value_text,
			value_number = excluded.value_number,
			value_json = excluded.value_json`,
		productID, propertyID, text, number, js)
	if err != nil {
		return fmt.Errorf("failed to set property %q for product %d: %w", name, productID, err)
	}
	return nil
}

func routePropertyValue(value interface{}) (text *string, number *float64, js *string, err error) {
	num := func(f float64) (*string, *float64, *string, error) {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, nil, nil, fmt.Errorf("non-finite number")
		}
		return nil, &f, nil, nil
	}

	switch v := value.(type) {
	case nil:
		return nil, nil, nil, fmt.Errorf("nil value")
	case string:
		return &v, nil, nil, nil
	case *string:
		if v == nil {
			return nil, nil, nil, fmt.Errorf("nil value")
		}
		return v, nil, nil, nil
	case float64:
		return num(v)
	case float32:
		return num(float64(v))
	case int:
		return num(float64(v))
	case int64:
		return num(float64(v))
	case json.Number:
		f, convErr := v.Float64()
		if convErr != nil {
			return nil, nil, nil, fmt.Errorf("invalid number %q: %w", v, convErr)
		}
		return num(f)
	case decimal.Decimal:
		return num(v.InexactFloat64())
	case decimal.NullDecimal:
		if !v.Valid {
			return nil, nil, nil, fmt.Errorf("nil value")
		}
		return num(v.Decimal.InexactFloat64())
	default:
		raw, marshalErr := json.Marshal(v)
		if marshalErr != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal value: %w", marshalErr)
		}
		s := string(raw)
		return nil, nil, &s, nil
	}
}
