package importer

import (
	"catalog_importer/pkg/business/service/feed"
	"github.com/shopspring/decimal"
	"reflect"
	"strings"
	"testing"
	"time"
)

const testMapping = `
supplier: test
feed_env: TEST_URL
timeout: 5s
supplier_sku:
  fields: [EXTID, ID]
  fallback_title: true
sku: CODE
title:
  fields: NAME
  compose: [typePrefix, vendor, model]
brand:
  fields: BRAND
category:
  fields: [SECTIONS.A, SECTIONS.B]
price:
  fields: PRICE
  strip: ["#CURRENCY#"]
currency:
  fields: CUR
  requires_price: true
stock: COUNT
images: [PIC, MORE]
properties:
  - {name: "Только холод", field: ONLY_COOL, type: bool}
  - {name: "EER", field: EER, type: decimal}
  - {name: "Серия", field: SERIES}
dynamic_properties:
  - field: PROPS
    numeric: [WEIGHT]
    skip: [HIDDEN]
attributes:
  - field: param
    unit_key: "@unit"
  - field: document
    default_name: "Документ %d"
`

func record(t *testing.T, body string) feed.Record {
	t.Helper()
	records, err := feed.DecodeJSONEnvelope([]byte(body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return records[0]
}

func TestLoadMapping(t *testing.T) {
	m, err := LoadMapping([]byte(testMapping))
	if err != nil {
		t.Fatalf("LoadMapping: %v", err)
	}
	if m.Timeout != 5*time.Second {
		t.Fatalf("timeout: got=%v", m.Timeout)
	}
	if m.Title.Default != "Без названия" {
		t.Fatalf("default title: got=%q", m.Title.Default)
	}
	if !reflect.DeepEqual(m.SKU, Fields{"CODE"}) {
		t.Fatalf("scalar fields: got=%v", m.SKU)
	}
	if m.Attributes[0].NameKey != "@name" || m.Attributes[0].ValueKey != "#text" {
		t.Fatalf("attribute defaults: got=%+v", m.Attributes[0])
	}
}

func TestLoadMappingErrors(t *testing.T) {
	tests := map[string]string{
		"no supplier":     "supplier_sku: {fields: ID}",
		"no sku":          "supplier: x",
		"bad type":        "supplier: x\nsupplier_sku: {fields: ID}\nproperties: [{name: a, field: b, type: date}]",
		"bad policy":      "supplier: x\nsupplier_sku: {fields: ID}\ncategory: {policy: fuzzy}",
		"unknown key":     "supplier: x\nsupplier_sku: {fields: ID}\ncolour: red",
		"tree and fields": "supplier: x\nsupplier_sku: {fields: ID}\ncategory: {tree: true, fields: [A]}",
	}
	for name, doc := range tests {
		if _, err := LoadMapping([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestExtract(t *testing.T) {
	m := MustLoadMapping([]byte(testMapping))
	rec := record(t, `{
		"ID": 15, "CODE": " gc-09 ", "NAME": "Сплит GC", "BRAND": "General",
		"SECTIONS": {"A": "Кондиционеры", "B": ""},
		"PRICE": "25 990,50#CURRENCY#", "CUR": "rur", "COUNT": "7",
		"PIC": "https://img/1.jpg", "MORE": ["https://img/2.jpg", "https://img/1.jpg", ""],
		"ONLY_COOL": "Да", "EER": "3,21", "SERIES": "",
		"PROPS": {"WEIGHT": "12,5", "COLOR": "белый", "HIDDEN": "x", "EMPTY": "", "LIST": ["a"]},
		"param": [{"@name": "Мощность", "@unit": "кВт", "#text": "2,6"}, {"@name": "Шум", "#text": ""}],
		"document": {"#text": "https://docs/passport.pdf"}
	}`)

	item, err := m.Extract(rec)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if item.SupplierSKU != "15" {
		t.Fatalf("supplier sku: got=%q", item.SupplierSKU)
	}
	if item.SKU == nil || *item.SKU != "gc-09" {
		t.Fatalf("sku: got=%v", item.SKU)
	}
	if !reflect.DeepEqual(item.CategoryPath, []string{"Кондиционеры"}) {
		t.Fatalf("category path: got=%v", item.CategoryPath)
	}
	if !item.Price.Valid || !item.Price.Decimal.Equal(decimal.RequireFromString("25990.5")) {
		t.Fatalf("price: got=%v", item.Price)
	}
	if item.Currency == nil || *item.Currency != "RUB" {
		t.Fatalf("currency: got=%v", item.Currency)
	}
	if item.Stock == nil || *item.Stock != 7 {
		t.Fatalf("stock: got=%v", item.Stock)
	}
	if !reflect.DeepEqual(item.Images, []string{"https://img/1.jpg", "https://img/2.jpg"}) {
		t.Fatalf("images: got=%v", item.Images)
	}

	props := map[string]interface{}{}
	for _, p := range item.Properties {
		props[p.Name] = p.Value
	}
	if props["Только холод"] != true {
		t.Fatalf("bool property: got=%#v", props["Только холод"])
	}
	if d, ok := props["EER"].(decimal.Decimal); !ok || !d.Equal(decimal.RequireFromString("3.21")) {
		t.Fatalf("decimal property: got=%#v", props["EER"])
	}
	if _, ok := props["Серия"]; ok {
		t.Fatalf("empty property must be skipped")
	}
	if d, ok := props["WEIGHT"].(decimal.Decimal); !ok || !d.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("numeric dynamic property: got=%#v", props["WEIGHT"])
	}
	if props["COLOR"] != "белый" {
		t.Fatalf("text dynamic property: got=%#v", props["COLOR"])
	}
	if _, ok := props["HIDDEN"]; ok {
		t.Fatalf("skipped key exported")
	}
	if _, ok := props["EMPTY"]; ok {
		t.Fatalf("empty dynamic property exported")
	}
	if _, ok := props["LIST"].([]interface{}); !ok {
		t.Fatalf("list dynamic property: got=%#v", props["LIST"])
	}
	if props["Мощность"] != "2,6 кВт" {
		t.Fatalf("param with unit: got=%#v", props["Мощность"])
	}
	if _, ok := props["Шум"]; ok {
		t.Fatalf("param without value exported")
	}
	if props["Документ 1"] != "https://docs/passport.pdf" {
		t.Fatalf("document default name: got=%v", props)
	}
	if !strings.Contains(string(item.Raw), `"CODE":" gc-09 "`) {
		t.Fatalf("raw must keep original fields: %s", item.Raw)
	}
}

func TestExtractFallbacks(t *testing.T) {
	m := MustLoadMapping([]byte(testMapping))

	item, err := m.Extract(record(t, `{"typePrefix": "Конвектор", "vendor": "Noirot", "model": "Spot E-5", "CUR": "USD"}`))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if item.Title != "Конвектор Noirot Spot E-5" {
		t.Fatalf("composed title: got=%q", item.Title)
	}
	if item.SupplierSKU != item.Title {
		t.Fatalf("supplier sku must fall back to title, got=%q", item.SupplierSKU)
	}
	if item.Currency != nil {
		t.Fatalf("currency without price: want nil got=%q", *item.Currency)
	}
	if item.CategoryPath != nil {
		t.Fatalf("category path: want nil got=%v", item.CategoryPath)
	}

	item, err = m.Extract(record(t, `{"ID": "1"}`))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if item.Title != "Без названия" {
		t.Fatalf("default title: got=%q", item.Title)
	}
}

func TestExtractRequiresSupplierSKU(t *testing.T) {
	m := MustLoadMapping([]byte("supplier: x\nsupplier_sku: {fields: ID}"))
	if _, err := m.Extract(record(t, `{"NAME": "n"}`)); err == nil {
		t.Fatalf("expected error for record without supplier sku")
	}
}

func TestExtractTreeCategory(t *testing.T) {
	m := MustLoadMapping([]byte("supplier: x\nsupplier_sku: {fields: ID}\ncategory: {tree: true, policy: normalized, memoize: true}"))
	rec := feed.Record{Fields: map[string]interface{}{"ID": "1"}, CategoryPath: []string{"A", "B"}}
	item, err := m.Extract(rec)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !reflect.DeepEqual(item.CategoryPath, []string{"A", "B"}) {
		t.Fatalf("tree path: got=%v", item.CategoryPath)
	}
	if opts := m.CategoryOptions(); !opts.Memoize || opts.Policy != "normalized" {
		t.Fatalf("category options: got=%+v", opts)
	}
}
