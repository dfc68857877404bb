// Package feed получает фиды поставщиков и разбирает их в плоские записи.
package feed

import (
	"encoding/json"
)

// Record одна позиция фида. Fields хранит исходные поля записи, вложенные
// объекты остаются map[string]interface{}, числа из JSON приходят как json.Number.
type Record struct {
	Fields map[string]interface{}
	// CategoryPath путь root->leaf, если формат фида сам описывает дерево категорий.
	CategoryPath []string
}

// Raw сериализует исходные поля для raw_import и supplier_offer.data.
func (r Record) Raw() (json.RawMessage, error) {
	return json.Marshal(r.Fields)
}

// Lookup достает значение по пути вида "SECTIONS.SECTION_1".
func (r Record) Lookup(path string) interface{} {
	return lookup(r.Fields, path)
}

func lookup(fields map[string]interface{}, path string) interface{} {
	if v, ok := fields[path]; ok {
		return v
	}
	var cur interface{} = fields
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '.' {
			continue
		}
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = m[path[start:i]]
		if !ok {
			return nil
		}
		start = i + 1
	}
	return cur
}
