package converters

import (
	"encoding/json"
	"fmt"
	"github.com/shopspring/decimal"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ColumnConverter приводит сырое значение поля фида к типу колонки.
// nil на выходе значит "значения нет".
type ColumnConverter func(value interface{}) (interface{}, error)

var (
	truthy = map[string]bool{"да": true, "yes": true, "true": true, "1": true}
	falsy  = map[string]bool{"нет": true, "no": true, "false": true, "0": true, "": true}
)

// Text возвращает текстовую форму скалярного значения. ok=false для nil,
// объектов и массивов.
func Text(v interface{}) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	case decimal.Decimal:
		return x.String(), true
	}
	return "", false
}

// Decimal разбирает число вида "1 234,56" или "1234.5". Все пробелы (включая
// неразрывные) удаляются, первая запятая становится точкой.
func Decimal(v interface{}) decimal.NullDecimal {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(decimal.NewFromFloat(x))
	case bool:
		return decimal.NullDecimal{}
	}

	s, ok := Text(v)
	if !ok {
		return decimal.NullDecimal{}
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	s = strings.Replace(s, ",", ".", 1)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// String обрезает пробелы. Пустая строка и отсутствие значения дают nil.
func String(v interface{}) *string {
	s, ok := Text(v)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Bool распознает да/yes/true/1 и нет/no/false/0/"". Остальное nil, а не false.
func Bool(v interface{}) *bool {
	if b, ok := v.(bool); ok {
		return &b
	}
	s, ok := Text(v)
	if !ok {
		return nil
	}
	s = strings.ToLower(strings.TrimSpace(s))
	var b bool
	switch {
	case truthy[s]:
		b = true
	case falsy[s]:
		b = false
	default:
		return nil
	}
	return &b
}

// Currency код валюты в верхнем регистре. RUR заменяется на RUB, пустое значение дает RUB.
func Currency(v interface{}) string {
	s := String(v)
	if s == nil {
		return "RUB"
	}
	code := strings.ToUpper(*s)
	if code == "RUR" {
		return "RUB"
	}
	return code
}

func StringConverter(value interface{}) (interface{}, error) {
	if s := String(value); s != nil {
		return *s, nil
	}
	return nil, nil
}

func DecimalConverter(value interface{}) (interface{}, error) {
	if d := Decimal(value); d.Valid {
		return d.Decimal, nil
	}
	return nil, nil
}

func BoolConverter(value interface{}) (interface{}, error) {
	if b := Bool(value); b != nil {
		return *b, nil
	}
	return nil, nil
}

// JSONConverter передает значение как есть (объекты и массивы уходят в value_json).
// Пустые строки считаются отсутствием значения.
func JSONConverter(value interface{}) (interface{}, error) {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return value, nil
}

// DefaultConverter строковое приведение.
func DefaultConverter(value interface{}) (interface{}, error) {
	return StringConverter(value)
}

// ByType возвращает конвертер по имени типа из маппинга поставщика.
func ByType(name string) (ColumnConverter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "string", "str":
		return StringConverter, nil
	case "decimal", "number", "dec":
		return DecimalConverter, nil
	case "bool", "boolean":
		return BoolConverter, nil
	case "json":
		return JSONConverter, nil
	}
	return nil, fmt.Errorf("unknown converter type %q", name)
}
