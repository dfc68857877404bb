package storage

import (
	"catalog_importer/internal/core/models"
	"context"
	"encoding/json"
	"fmt"
)

// SaveRawImport сохраняет исходную запись фида как есть для аудита и повторной обработки.
func (c *Catalog) SaveRawImport(ctx context.Context, supplierID int64, batchID string, payload json.RawMessage) error {
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO raw_import (supplier_id, batch_id, payload) VALUES ($1, $2, $3)`,
		supplierID, batchID, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save raw import: %w", err)
	}
	return nil
}

func (c *Catalog) WriteImportLog(ctx context.Context, supplierID int64, batchID string, status models.ImportStatus, message string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO import_log (supplier_id, batch_id, status, message) VALUES ($1, $2, $3, $4)`,
		supplierID, batchID, string(status), message)
	if err != nil {
		return fmt.Errorf("failed to write import log: %w", err)
	}
	return nil
}

func (c *Catalog) ImportLogs(ctx context.Context, supplierID int64, batchID string) ([]models.ImportLog, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, supplier_id, batch_id, status, COALESCE(message, '')
		FROM import_log WHERE supplier_id = $1 AND batch_id = $2 ORDER BY id`,
		supplierID, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var logs []models.ImportLog
	for rows.Next() {
		var l models.ImportLog
		var status string
		if err := rows.Scan(&l.ID, &l.SupplierID, &l.BatchID, &status, &l.Message); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		l.Status = models.ImportStatus(status)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error occurred during row iteration: %w", err)
	}
	return logs, nil
}
