package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	// KindConfig нет поставщика или URL фида. Запись в import_log не создается.
	KindConfig    ErrorKind = "config"
	KindTransport ErrorKind = "transport"
	KindParse     ErrorKind = "parse"
	KindRecord    ErrorKind = "record"
	KindStorage   ErrorKind = "storage"
)

// ImportError ошибка запуска адаптера с указанием стадии, на которой он упал.
type ImportError struct {
	Kind     ErrorKind
	Supplier string
	Err      error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Supplier, e.Kind, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

func NewImportError(kind ErrorKind, supplier string, err error) *ImportError {
	return &ImportError{Kind: kind, Supplier: supplier, Err: err}
}

// KindOf возвращает стадию ошибки или пустую строку для ошибок без ImportError в цепочке.
func KindOf(err error) ErrorKind {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}
