package dbconnect

import "strings"

// Dialect хранит то немногое, чем Postgres и SQLite различаются для каталога:
// типы колонок в DDL и признак нарушения уникальности. Запросы пишутся с
// плейсхолдерами $1..$N в порядке возрастания, их понимают оба драйвера.
type Dialect struct {
	Name          string
	IDColumn      string
	JSONType      string
	TimestampType string
	// SupportsArrays включает запросы с pq.Array и unnest.
	SupportsArrays bool

	uniqueViolation func(error) bool
}

func NewDialect(name, idColumn, jsonType, timestampType string, arrays bool, uniqueViolation func(error) bool) Dialect {
	return Dialect{
		Name:            name,
		IDColumn:        idColumn,
		JSONType:        jsonType,
		TimestampType:   timestampType,
		SupportsArrays:  arrays,
		uniqueViolation: uniqueViolation,
	}
}

func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil || d.uniqueViolation == nil {
		return false
	}
	return d.uniqueViolation(err)
}

// Expand подставляет типы диалекта в DDL: {{id}}, {{json}}, {{timestamp}}.
func (d Dialect) Expand(ddl string) string {
	r := strings.NewReplacer(
		"{{id}}", d.IDColumn,
		"{{json}}", d.JSONType,
		"{{timestamp}}", d.TimestampType,
	)
	return r.Replace(ddl)
}
