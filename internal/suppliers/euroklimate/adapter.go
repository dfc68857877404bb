// Package euroklimate импорт YML фида Евроклимат.
package euroklimate

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
	return importer.NewAdapter(Mapping(), decode, catalog, opts)
}

func decode(body []byte) ([]feed.Record, error) {
	catalog, err := feed.DecodeYML(body)
	if err != nil {
		return nil, err
	}
	return catalog.Records(), nil
}
