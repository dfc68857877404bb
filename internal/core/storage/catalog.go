package storage

import (
	"catalog_importer/pkg/dbconnect"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Catalog общее хранилище каталога. Каждый метод выполняет свою атомарную единицу
// работы без общей транзакции: сбой посреди импорта оставляет уже записанное.
type Catalog struct {
	db      *sql.DB
	dialect dbconnect.Dialect
}

func NewCatalog(db *sql.DB, dialect dbconnect.Dialect) *Catalog {
	return &Catalog{db: db, dialect: dialect}
}

func (c *Catalog) DB() *sql.DB {
	return c.db
}

func (c *Catalog) Dialect() dbconnect.Dialect {
	return c.dialect
}

// queryID возвращает id из первой строки запроса, ok=false если строк нет.
func (c *Catalog) queryID(ctx context.Context, query string, args ...interface{}) (int64, bool, error) {
	var id int64
	err := c.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

// insertIgnoreThenSelect атомарный аналог "найти или создать" для словарей:
// вставка с ON CONFLICT DO NOTHING и чтение id. Гонка двух вставок не дает дубликата.
func (c *Catalog) insertIgnoreThenSelect(ctx context.Context, insert string, insertArgs []interface{}, selectQuery string, selectArgs []interface{}) (int64, error) {
	if _, err := c.db.ExecContext(ctx, insert, insertArgs...); err != nil {
		return 0, err
	}
	id, ok, err := c.queryID(ctx, selectQuery, selectArgs...)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("row disappeared after insert")
	}
	return id, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
