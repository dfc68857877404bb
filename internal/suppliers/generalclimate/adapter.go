// Package generalclimate импорт JSON выгрузки General Climate.
package generalclimate

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

func NewAdapter(catalog *storage.Catalog, opts importer.Options) *importer.Adapter {
	return importer.NewAdapter(Mapping(), feed.DecodeJSONArray, catalog, opts)
}
