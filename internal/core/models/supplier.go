package models

import "time"

// Supplier представляет поставщика в системе.
// Записи создаются миграцией и при импорте только читаются.
type Supplier struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
