package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeJSONArray разбирает тело, которое обязано быть массивом объектов.
func DecodeJSONArray(body []byte) ([]Record, error) {
	var items []interface{}
	if err := decodeJSON(body, &items); err != nil {
		return nil, err
	}
	return toRecords(items)
}

// DecodeJSONEnvelope допускает три формы тела: массив объектов, {"items": [...]}
// или одиночный объект, который становится единственной записью.
func DecodeJSONEnvelope(body []byte) ([]Record, error) {
	var doc interface{}
	if err := decodeJSON(body, &doc); err != nil {
		return nil, err
	}

	switch v := doc.(type) {
	case []interface{}:
		return toRecords(v)
	case map[string]interface{}:
		if items, ok := v["items"].([]interface{}); ok {
			return toRecords(items)
		}
		return []Record{{Fields: v}}, nil
	}
	return nil, fmt.Errorf("unexpected JSON document of type %T", doc)
}

func decodeJSON(body []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode JSON feed: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("failed to decode JSON feed: unexpected data after document at offset %d", dec.InputOffset())
	}
	return nil
}

func toRecords(items []interface{}) ([]Record, error) {
	records := make([]Record, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("feed item %d is %T, not an object", i, item)
		}
		records = append(records, Record{Fields: fields})
	}
	return records, nil
}
