package importer

import (
	"catalog_importer/pkg/business/service/converters"
	"catalog_importer/pkg/business/service/feed"
	"encoding/json"
	"fmt"
	"github.com/shopspring/decimal"
	"sort"
	"strings"
)

// Item нормализованная запись фида, готовая к записи в каталог.
type Item struct {
	SupplierSKU  string
	SKU          *string
	Barcode      *string
	Title        string
	Brand        *string
	Description  *string
	CategoryPath []string
	Price        decimal.NullDecimal
	Currency     *string
	Stock        *int64
	URL          *string
	Images       []string
	Properties   []Property
	Raw          json.RawMessage
}

type Property struct {
	Name  string
	Value interface{}
}

// Extract нормализует запись по маппингу. Ошибка значит, что запись нельзя
// связать с предложением поставщика (нет supplier sku) или ее нельзя сериализовать.
func (m *Mapping) Extract(rec feed.Record) (Item, error) {
	raw, err := rec.Raw()
	if err != nil {
		return Item{}, fmt.Errorf("failed to encode record: %w", err)
	}

	item := Item{
		SKU:         firstString(rec, m.SKU),
		Barcode:     firstString(rec, m.Barcode),
		Title:       m.title(rec),
		Brand:       m.brand(rec),
		Description: firstString(rec, m.Description),
		URL:         firstString(rec, m.URL),
		Images:      images(rec, m.Images),
		Raw:         raw,
	}

	if sku := firstString(rec, m.SupplierSKU.Fields); sku != nil {
		item.SupplierSKU = *sku
	} else if m.SupplierSKU.FallbackTitle {
		item.SupplierSKU = item.Title
	}
	if strings.TrimSpace(item.SupplierSKU) == "" {
		return Item{}, fmt.Errorf("record has no supplier sku (fields %s)", strings.Join(m.SupplierSKU.Fields, ", "))
	}

	if m.Category.Tree {
		item.CategoryPath = rec.CategoryPath
	} else {
		for _, field := range m.Category.Fields {
			if s := converters.String(rec.Lookup(field)); s != nil {
				item.CategoryPath = append(item.CategoryPath, *s)
			}
		}
	}

	item.Price = m.price(rec)
	item.Currency = m.currency(rec, item.Price.Valid)
	if stock := firstDecimal(rec, m.Stock); stock.Valid {
		n := stock.Decimal.IntPart()
		item.Stock = &n
	}

	item.Properties = append(item.Properties, m.fixedProperties(rec)...)
	for _, d := range m.Dynamic {
		item.Properties = append(item.Properties, d.extract(rec)...)
	}
	for _, a := range m.Attributes {
		item.Properties = append(item.Properties, a.extract(rec)...)
	}
	return item, nil
}

func (m *Mapping) title(rec feed.Record) string {
	if s := firstString(rec, m.Title.Fields); s != nil {
		return *s
	}
	var parts []string
	for _, field := range m.Title.Compose {
		if s := converters.String(rec.Lookup(field)); s != nil {
			parts = append(parts, *s)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return m.Title.Default
}

func (m *Mapping) brand(rec feed.Record) *string {
	if m.Brand.Const != "" {
		brand := m.Brand.Const
		return &brand
	}
	return firstString(rec, m.Brand.Fields)
}

func (m *Mapping) price(rec feed.Record) decimal.NullDecimal {
	for _, field := range m.Price.Fields {
		s, ok := converters.Text(rec.Lookup(field))
		if !ok {
			continue
		}
		for _, token := range m.Price.Strip {
			s = strings.ReplaceAll(s, token, "")
		}
		if d := converters.Decimal(s); d.Valid {
			return d
		}
	}
	return decimal.NullDecimal{}
}

func (m *Mapping) currency(rec feed.Record, hasPrice bool) *string {
	if m.Currency.RequiresPrice && !hasPrice {
		return nil
	}
	var code string
	switch {
	case m.Currency.Const != "":
		code = converters.Currency(m.Currency.Const)
	case len(m.Currency.Fields) > 0:
		var raw interface{}
		if s := firstString(rec, m.Currency.Fields); s != nil {
			raw = *s
		}
		code = converters.Currency(raw)
	default:
		return nil
	}
	return &code
}

func (m *Mapping) fixedProperties(rec feed.Record) []Property {
	var props []Property
	for _, p := range m.Properties {
		v, err := p.convert(rec.Lookup(p.Field))
		if err != nil || v == nil {
			continue
		}
		props = append(props, Property{Name: p.Name, Value: v})
	}
	return props
}

func (d DynamicRule) extract(rec feed.Record) []Property {
	obj, ok := rec.Lookup(d.Field).(map[string]interface{})
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		if !d.skip[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var props []Property
	for _, k := range keys {
		var v interface{}
		switch raw := obj[k]; raw.(type) {
		case map[string]interface{}, []interface{}:
			if !isEmptyCollection(raw) {
				v = raw
			}
		default:
			if d.numeric[k] {
				v, _ = converters.DecimalConverter(raw)
			} else {
				v, _ = converters.StringConverter(raw)
			}
		}
		if v != nil {
			props = append(props, Property{Name: k, Value: v})
		}
	}
	return props
}

func (a AttributeRule) extract(rec feed.Record) []Property {
	var elements []interface{}
	switch v := rec.Lookup(a.Field).(type) {
	case []interface{}:
		elements = v
	case map[string]interface{}:
		elements = []interface{}{v}
	default:
		return nil
	}

	var props []Property
	for i, el := range elements {
		attr, ok := el.(map[string]interface{})
		if !ok {
			continue
		}

		name := converters.String(attr[a.NameKey])
		if name == nil {
			if a.DefaultName == "" {
				continue
			}
			defaultName := fmt.Sprintf(a.DefaultName, i+1)
			name = &defaultName
		}

		value := converters.String(attr[a.ValueKey])
		if value == nil {
			continue
		}
		full := *value
		if a.UnitKey != "" {
			if unit := converters.String(attr[a.UnitKey]); unit != nil {
				full = strings.TrimSpace(full + " " + *unit)
			}
		}
		props = append(props, Property{Name: *name, Value: full})
	}
	return props
}

func firstString(rec feed.Record, fields Fields) *string {
	for _, field := range fields {
		if s := converters.String(rec.Lookup(field)); s != nil {
			return s
		}
	}
	return nil
}

func firstDecimal(rec feed.Record, fields Fields) decimal.NullDecimal {
	for _, field := range fields {
		if d := converters.Decimal(rec.Lookup(field)); d.Valid {
			return d
		}
	}
	return decimal.NullDecimal{}
}

// images собирает ссылки из строковых полей и списков, сохраняя порядок и без повторов.
func images(rec feed.Record, fields Fields) []string {
	var urls []string
	seen := map[string]bool{}
	add := func(v interface{}) {
		if s := converters.String(v); s != nil && !seen[*s] {
			seen[*s] = true
			urls = append(urls, *s)
		}
	}
	for _, field := range fields {
		switch v := rec.Lookup(field).(type) {
		case []interface{}:
			for _, el := range v {
				add(el)
			}
		default:
			add(v)
		}
	}
	return urls
}

func isEmptyCollection(v interface{}) bool {
	switch c := v.(type) {
	case map[string]interface{}:
		return len(c) == 0
	case []interface{}:
		return len(c) == 0
	}
	return false
}
