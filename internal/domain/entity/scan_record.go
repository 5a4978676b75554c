package entity

import "time"

// ScanRecord es una entrada del historial de escaneos (append-only).
// Captura el stock antes y después del incremento para poder auditar
// exactamente qué produjo cada escaneo aceptado.
type ScanRecord struct {
	ID          string
	UserID      string
	ProductID   string
	ProductName string
	Barcode     string
	StockBefore int
	StockAfter  int
	ScannedAt   time.Time
}
