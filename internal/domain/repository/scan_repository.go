package repository

import "github.com/jhoicas/InvenScan-api/internal/domain/entity"

// ScanRepository define el puerto del historial de escaneos.
// Append-only: no existe Update ni Delete de entradas individuales.
type ScanRepository interface {
	Append(record *entity.ScanRecord) error
	ListByUser(userID string, limit, offset int) ([]*entity.ScanRecord, error)
}
