package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"io"
	"strings"
)

// YMLCatalog документ формата "shop catalog": yml_catalog/shop/{categories,offers}.
type YMLCatalog struct {
	XMLName xml.Name `xml:"yml_catalog"`
	Date    string   `xml:"date,attr"`
	Shop    YMLShop  `xml:"shop"`
}

type YMLShop struct {
	Name       string        `xml:"name"`
	Categories []YMLCategory `xml:"categories>category"`
	Offers     []YMLOffer    `xml:"offers>offer"`
}

type YMLCategory struct {
	ID       string `xml:"id,attr"`
	ParentID string `xml:"parentId,attr"`
	Name     string `xml:",chardata"`
}

type YMLOffer struct {
	ID          string        `xml:"id,attr"`
	Available   string        `xml:"available,attr"`
	Name        string        `xml:"name"`
	TypePrefix  string        `xml:"typePrefix"`
	Vendor      string        `xml:"vendor"`
	Model       string        `xml:"model"`
	VendorCode  string        `xml:"vendorCode"`
	Price       string        `xml:"price"`
	CurrencyID  string        `xml:"currencyId"`
	CategoryID  string        `xml:"categoryId"`
	Description YMLText       `xml:"description"`
	URL         string        `xml:"url"`
	Barcode     string        `xml:"barcode"`
	Count       string        `xml:"count"`
	Pictures    []string      `xml:"picture"`
	Params      []YMLParam    `xml:"param"`
	Documents   []YMLDocument `xml:"document"`
}

// YMLText текст элемента вместе с вложенной HTML-разметкой. Текст верхнего
// уровня, включая CDATA, пишется декодированным, вложенные элементы остаются разметкой.
type YMLText string

func (t *YMLText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			depth++
			b.WriteString("<" + tk.Name.Local)
			for _, attr := range tk.Attr {
				b.WriteString(" " + attr.Name.Local + `="`)
				xml.EscapeText(&b, []byte(attr.Value))
				b.WriteString(`"`)
			}
			b.WriteString(">")
		case xml.EndElement:
			if depth == 0 {
				*t = YMLText(b.String())
				return nil
			}
			depth--
			b.WriteString("</" + tk.Name.Local + ">")
		case xml.CharData:
			if depth == 0 {
				b.Write(tk)
			} else {
				xml.EscapeText(&b, tk)
			}
		}
	}
}

type YMLParam struct {
	Name  string `xml:"name,attr"`
	Unit  string `xml:"unit,attr"`
	Value string `xml:",chardata"`
}

type YMLDocument struct {
	Name string `xml:"name,attr"`
	URL  string `xml:",chardata"`
}

// DecodeYML разбирает YML документ. Кодировка берется из XML-декларации
// (windows-1251, koi8-r и прочие метки из WHATWG).
func DecodeYML(body []byte) (*YMLCatalog, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charsetReader
	dec.Entity = xml.HTMLEntity

	var catalog YMLCatalog
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode YML feed: %w", err)
	}
	return &catalog, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// Records превращает предложения в записи с восстановленным путем категорий.
func (c *YMLCatalog) Records() []Record {
	tree := newCategoryTree(c.Shop.Categories)
	records := make([]Record, 0, len(c.Shop.Offers))
	for _, offer := range c.Shop.Offers {
		records = append(records, Record{
			Fields:       offer.fields(),
			CategoryPath: tree.path(strings.TrimSpace(offer.CategoryID)),
		})
	}
	return records
}

// fields раскладывает предложение в плоскую карту: атрибуты с префиксом "@",
// текст элемента под "#text". Пустые элементы не попадают в карту.
func (o YMLOffer) fields() map[string]interface{} {
	f := map[string]interface{}{}
	set := func(key, value string) {
		if value != "" {
			f[key] = value
		}
	}
	set("@id", o.ID)
	set("@available", o.Available)
	set("name", o.Name)
	set("typePrefix", o.TypePrefix)
	set("vendor", o.Vendor)
	set("model", o.Model)
	set("vendorCode", o.VendorCode)
	set("price", o.Price)
	set("currencyId", o.CurrencyID)
	set("categoryId", o.CategoryID)
	set("description", string(o.Description))
	set("url", o.URL)
	set("barcode", o.Barcode)
	set("count", o.Count)

	if len(o.Pictures) > 0 {
		pictures := make([]interface{}, 0, len(o.Pictures))
		for _, p := range o.Pictures {
			pictures = append(pictures, p)
		}
		f["picture"] = pictures
	}
	if len(o.Params) > 0 {
		params := make([]interface{}, 0, len(o.Params))
		for _, p := range o.Params {
			params = append(params, map[string]interface{}{"@name": p.Name, "@unit": p.Unit, "#text": p.Value})
		}
		f["param"] = params
	}
	if len(o.Documents) > 0 {
		docs := make([]interface{}, 0, len(o.Documents))
		for _, d := range o.Documents {
			docs = append(docs, map[string]interface{}{"@name": d.Name, "#text": d.URL})
		}
		f["document"] = docs
	}
	return f
}

type categoryTree struct {
	byID map[string]YMLCategory
}

func newCategoryTree(categories []YMLCategory) *categoryTree {
	t := &categoryTree{byID: make(map[string]YMLCategory, len(categories))}
	for _, c := range categories {
		c.ID = strings.TrimSpace(c.ID)
		c.ParentID = strings.TrimSpace(c.ParentID)
		c.Name = strings.TrimSpace(c.Name)
		t.byID[c.ID] = c
	}
	return t
}

// path поднимается от листа к корню. Цикл в parentId обрывает подъем на
// первом повторно встреченном узле.
func (t *categoryTree) path(leafID string) []string {
	if leafID == "" {
		return nil
	}
	var path []string
	seen := map[string]bool{}
	cur, ok := t.byID[leafID]
	for ok && !seen[cur.ID] {
		seen[cur.ID] = true
		path = append(path, cur.Name)
		if cur.ParentID == "" {
			break
		}
		cur, ok = t.byID[cur.ParentID]
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
