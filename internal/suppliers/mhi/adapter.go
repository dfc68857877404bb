// Package mhi импорт JSON фидов Mitsubishi Heavy Industries.
package mhi

import (
	"catalog_importer/internal/core/storage"
	"catalog_importer/internal/suppliers/importer"
	"catalog_importer/pkg/business/service/feed"
	_ "embed"
)

//go:embed mapping.yaml
var mappingYAML []byte

func Mapping() *importer.Mapping {
	return importer.MustLoadMapping(mappingYAML)
}

// NewAdapter принимает все URL фидов в opts.URLs. Тело каждого ответа может быть
// массивом, объектом {"items": [...]} или одиночной записью.
func NewAdapter(catalog *storage.Catalog, opts importer.Options) *importer.Adapter {
	return importer.NewAdapter(Mapping(), feed.DecodeJSONEnvelope, catalog, opts)
}
