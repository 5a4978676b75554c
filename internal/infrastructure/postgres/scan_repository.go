package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/InvenScan-api/internal/domain/entity"
	"github.com/jhoicas/InvenScan-api/internal/domain/repository"
)

var _ repository.ScanRepository = (*ScanRepo)(nil)

// ScanRepo implementación append-only del historial de escaneos sobre PostgreSQL.
type ScanRepo struct {
	q Querier
}

// NewScanRepository construye el adaptador de persistencia para el historial.
func NewScanRepository(q Querier) *ScanRepo {
	return &ScanRepo{q: q}
}

// Append persiste una entrada de historial. Las entradas nunca se modifican.
func (r *ScanRepo) Append(record *entity.ScanRecord) error {
	query := `
		INSERT INTO scan_records
			(id, user_id, product_id, product_name, barcode, stock_before, stock_after, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		record.ID, record.UserID, record.ProductID, record.ProductName,
		record.Barcode, record.StockBefore, record.StockAfter, record.ScannedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scan record: %w", err)
	}
	return nil
}

// ListByUser lista el historial del usuario, del escaneo más reciente al más antiguo.
func (r *ScanRepo) ListByUser(userID string, limit, offset int) ([]*entity.ScanRecord, error) {
	query := `
		SELECT id, user_id, product_id, product_name, barcode, stock_before, stock_after, scanned_at
		FROM scan_records
		WHERE user_id = $1
		ORDER BY scanned_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list scan records: %w", err)
	}
	defer rows.Close()
	var list []*entity.ScanRecord
	for rows.Next() {
		var rec entity.ScanRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.ProductID, &rec.ProductName,
			&rec.Barcode, &rec.StockBefore, &rec.StockAfter, &rec.ScannedAt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
