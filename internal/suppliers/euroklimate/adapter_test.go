package euroklimate

import (
	"catalog_importer/internal/core/storage/storagetest"
	"catalog_importer/internal/suppliers/importer"
	"context"
	"database/sql"
	"golang.org/x/text/encoding/charmap"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

const feedV1 = `<?xml version="1.0" encoding="windows-1251"?>
<yml_catalog date="2024-05-01 10:00">
<shop>
  <categories>
    <category id="1">Кондиционеры</category>
    <category id="2" parentId="1">Сплит-системы</category>
  </categories>
  <offers>
    <offer id="EK-100" available="true">
      <name>Сплит-система Ballu BSD-09HN1</name>
      <vendor>Ballu</vendor>
      <price>25990</price>
      <currencyId>RUR</currencyId>
      <categoryId>2</categoryId>
      <url>https://ek.example/offer/100</url>
      <barcode>4640000000017</barcode>
      <count>4</count>
      <picture>https://ek.example/1.jpg</picture>
      <picture>https://ek.example/2.jpg</picture>
      <param name="Мощность охлаждения" unit="кВт">2,6</param>
      <document name="Паспорт">https://ek.example/passport.pdf</document>
      <document>https://ek.example/cert.pdf</document>
    </offer>
    <offer id="EK-200">
      <typePrefix>Конвектор</typePrefix>
      <vendor>Noirot</vendor>
      <model>Spot E-5</model>
      <price>9 990,00</price>
      <categoryId>2</categoryId>
    </offer>
  </offers>
</shop>
</yml_catalog>`

// Второй выпуск фида: поставщик поменял регистр названий категорий.
var feedV2 = strings.NewReplacer("<category id=\"1\">Кондиционеры", "<category id=\"1\">КОНДИЦИОНЕРЫ",
	"Сплит-системы</category>", "сплит-системы</category>").Replace(feedV1)

func serve(t *testing.T, bodies ...string) string {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := int(calls.Add(1)) - 1
		if i >= len(bodies) {
			i = len(bodies) - 1
		}
		encoded, err := charmap.Windows1251.NewEncoder().String(bodies[i])
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(encoded))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestRunImportsYML(t *testing.T) {
	ctx := context.Background()
	c := storagetest.Open(t)
	a := NewAdapter(c, importer.Options{URLs: []string{serve(t, feedV1)}})

	count, err := a.Run(ctx, "b1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if count != 2 {
		t.Fatalf("count: want=2 got=%d", count)
	}

	for table, want := range map[string]int{
		"product": 2, "supplier_offer": 2, "category": 2, "supplier_category_map": 1,
		"product_category": 2, "image": 2, "brand": 2,
	} {
		if n := storagetest.Count(t, c, table); n != want {
			t.Fatalf("%s rows: want=%d got=%d", table, want, n)
		}
	}

	var currency string
	var stock sql.NullInt64
	var barcode sql.NullString
	err = c.DB().QueryRow(`
		SELECT o.currency, o.stock, p.barcode
		FROM supplier_offer o JOIN product p ON p.id = o.product_id
		WHERE o.supplier_sku = $1`, "EK-100").Scan(&currency, &stock, &barcode)
	if err != nil {
		t.Fatalf("select offer: %v", err)
	}
	if currency != "RUB" || stock.Int64 != 4 || barcode.String != "4640000000017" {
		t.Fatalf("offer: currency=%s stock=%v barcode=%v", currency, stock, barcode)
	}

	var title string
	if err := c.DB().QueryRow(`SELECT title FROM supplier_offer WHERE supplier_sku = $1`, "EK-200").Scan(&title); err != nil {
		t.Fatalf("select title: %v", err)
	}
	if title != "Конвектор Noirot Spot E-5" {
		t.Fatalf("composed title: got=%q", title)
	}

	props := map[string]string{}
	rows, err := c.DB().Query(`SELECT p.name, pp.value_text FROM product_property pp JOIN property p ON p.id = pp.property_id`)
	if err != nil {
		t.Fatalf("select properties: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			t.Fatalf("scan: %v", err)
		}
		props[name] = value
	}
	if props["Мощность охлаждения"] != "2,6 кВт" {
		t.Fatalf("param: got=%v", props)
	}
	if props["Паспорт"] != "https://ek.example/passport.pdf" || props["Документ 2"] != "https://ek.example/cert.pdf" {
		t.Fatalf("documents: got=%v", props)
	}
}

func TestRunCollapsesRenamedCategories(t *testing.T) {
	ctx := context.Background()
	c := storagetest.Open(t)
	a := NewAdapter(c, importer.Options{URLs: []string{serve(t, feedV1, feedV2)}})

	for _, batch := range []string{"b1", "b2"} {
		if _, err := a.Run(ctx, batch); err != nil {
			t.Fatalf("Run %s: %v", batch, err)
		}
	}
	if n := storagetest.Count(t, c, "category"); n != 2 {
		t.Fatalf("category rows: want=2 got=%d", n)
	}
	if n := storagetest.Count(t, c, "product"); n != 2 {
		t.Fatalf("product rows: want=2 got=%d", n)
	}
	if n := storagetest.Count(t, c, "product_category"); n != 2 {
		t.Fatalf("product_category rows: want=2 got=%d", n)
	}
	if n := storagetest.Count(t, c, "supplier_category_map"); n != 1 {
		t.Fatalf("category map rows: want=1 got=%d", n)
	}
}
