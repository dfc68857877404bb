package models

type ImportStatus string

const (
	ImportStatusOK    ImportStatus = "ok"
	ImportStatusError ImportStatus = "error"
)

// ImportLog итоговая запись одного запуска адаптера (supplier, batch).
type ImportLog struct {
	ID         int64        `json:"id"`
	SupplierID int64        `json:"supplier_id"`
	BatchID    string       `json:"batch_id"`
	Status     ImportStatus `json:"status"`
	Message    string       `json:"message"`
}
