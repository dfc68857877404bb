package services

import "context"

// SupplierAdapter импорт одного поставщика.
type SupplierAdapter interface {
	// Code код поставщика в таблице supplier.
	Code() string

	// Run выполняет полный импорт с данным batchID и возвращает число импортированных записей.
	Run(ctx context.Context, batchID string) (int, error)
}
