package importer

import (
	"bytes"
	"catalog_importer/internal/core/category"
	"catalog_importer/pkg/business/service/converters"
	"fmt"
	"gopkg.in/yaml.v3"
	"time"
)

// Mapping декларативное описание того, как запись фида поставщика
// раскладывается по каталогу. Хранится в mapping.yaml пакета поставщика.
type Mapping struct {
	Supplier string        `yaml:"supplier"`
	FeedEnv  string        `yaml:"feed_env"`
	Timeout  time.Duration `yaml:"timeout"`

	SupplierSKU SKURule      `yaml:"supplier_sku"`
	SKU         Fields       `yaml:"sku"`
	Barcode     Fields       `yaml:"barcode"`
	Title       TitleRule    `yaml:"title"`
	Brand       ValueRule    `yaml:"brand"`
	Description Fields       `yaml:"description"`
	Category    CategoryRule `yaml:"category"`
	Price       PriceRule    `yaml:"price"`
	Currency    CurrencyRule `yaml:"currency"`
	Stock       Fields       `yaml:"stock"`
	URL         Fields       `yaml:"url"`
	Images      Fields       `yaml:"images"`

	Properties []PropertyRule  `yaml:"properties"`
	Dynamic    []DynamicRule   `yaml:"dynamic_properties"`
	Attributes []AttributeRule `yaml:"attributes"`
}

// Fields список путей к полю записи. Берется первое непустое значение.
// В YAML допускается и одна строка, и список.
type Fields []string

func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*f = Fields{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*f = list
		return nil
	}
	return fmt.Errorf("line %d: expected field name or list of field names", node.Line)
}

type SKURule struct {
	Fields Fields `yaml:"fields"`
	// FallbackTitle использовать название товара, если ни одно поле не заполнено.
	FallbackTitle bool `yaml:"fallback_title"`
}

type TitleRule struct {
	Fields Fields `yaml:"fields"`
	// Compose склеивает поля через пробел, если Fields пусты (typePrefix vendor model).
	Compose Fields `yaml:"compose"`
	Default string `yaml:"default"`
}

type ValueRule struct {
	Fields Fields `yaml:"fields"`
	Const  string `yaml:"const"`
}

type CategoryRule struct {
	// Fields сегменты пути root->leaf по одному полю на уровень.
	Fields Fields `yaml:"fields"`
	// Tree путь берется из дерева категорий самого фида.
	Tree    bool   `yaml:"tree"`
	Policy  string `yaml:"policy"`
	Memoize bool   `yaml:"memoize"`
}

type PriceRule struct {
	Fields Fields `yaml:"fields"`
	// Strip подстроки, вырезаемые до разбора числа ("#CURRENCY#").
	Strip []string `yaml:"strip"`
}

type CurrencyRule struct {
	Fields Fields `yaml:"fields"`
	Const  string `yaml:"const"`
	// RequiresPrice валюта пишется, только если цена разобралась.
	RequiresPrice bool `yaml:"requires_price"`
}

type PropertyRule struct {
	Name  string `yaml:"name"`
	Field string `yaml:"field"`
	Type  string `yaml:"type"`

	convert converters.ColumnConverter
}

// DynamicRule выгружает все ключи объекта как свойства. Ключи из Numeric
// разбираются как числа.
type DynamicRule struct {
	Field   string   `yaml:"field"`
	Numeric []string `yaml:"numeric"`
	Skip    []string `yaml:"skip"`

	numeric map[string]bool
	skip    map[string]bool
}

// AttributeRule список элементов-атрибутов, например YML <param name="" unit="">.
type AttributeRule struct {
	Field       string `yaml:"field"`
	NameKey     string `yaml:"name_key"`
	ValueKey    string `yaml:"value_key"`
	UnitKey     string `yaml:"unit_key"`
	DefaultName string `yaml:"default_name"`
}

// LoadMapping разбирает и проверяет маппинг. Неизвестные ключи считаются ошибкой.
func LoadMapping(data []byte) (*Mapping, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Mapping
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode mapping: %w", err)
	}
	if err := m.prepare(); err != nil {
		return nil, fmt.Errorf("mapping %s: %w", m.Supplier, err)
	}
	return &m, nil
}

func MustLoadMapping(data []byte) *Mapping {
	m, err := LoadMapping(data)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Mapping) prepare() error {
	if m.Supplier == "" {
		return fmt.Errorf("supplier code is required")
	}
	if len(m.SupplierSKU.Fields) == 0 && !m.SupplierSKU.FallbackTitle {
		return fmt.Errorf("supplier_sku needs fields or fallback_title")
	}
	if m.Title.Default == "" {
		m.Title.Default = "Без названия"
	}
	if _, err := category.ParsePolicy(m.Category.Policy); err != nil {
		return err
	}
	if m.Category.Tree && len(m.Category.Fields) > 0 {
		return fmt.Errorf("category: tree and fields are mutually exclusive")
	}
	if m.Brand.Const != "" && len(m.Brand.Fields) > 0 {
		return fmt.Errorf("brand: const and fields are mutually exclusive")
	}

	for i := range m.Properties {
		p := &m.Properties[i]
		if p.Name == "" || p.Field == "" {
			return fmt.Errorf("property %d needs name and field", i)
		}
		conv, err := converters.ByType(p.Type)
		if err != nil {
			return fmt.Errorf("property %q: %w", p.Name, err)
		}
		p.convert = conv
	}

	for i := range m.Dynamic {
		d := &m.Dynamic[i]
		if d.Field == "" {
			return fmt.Errorf("dynamic property %d needs field", i)
		}
		d.numeric = toSet(d.Numeric)
		d.skip = toSet(d.Skip)
	}

	for i := range m.Attributes {
		a := &m.Attributes[i]
		if a.Field == "" {
			return fmt.Errorf("attribute %d needs field", i)
		}
		if a.NameKey == "" {
			a.NameKey = "@name"
		}
		if a.ValueKey == "" {
			a.ValueKey = "#text"
		}
	}
	return nil
}

// CategoryOptions настройки резолвера категорий для этого поставщика.
func (m *Mapping) CategoryOptions() category.Options {
	policy, _ := category.ParsePolicy(m.Category.Policy)
	return category.Options{Policy: policy, Memoize: m.Category.Memoize}
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
