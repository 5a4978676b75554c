package dto

import "time"

// CreateScanSessionResponse sesión de escaneo creada.
type CreateScanSessionResponse struct {
	SessionID  string `json:"session_id"`
	CooldownMS int    `json:"cooldown_ms"`
	RearmMS    int    `json:"rearm_ms"`
}

// DecodeRequest un código decodificado por el cliente de cámara.
type DecodeRequest struct {
	Code string `json:"code" validate:"required,min=1,max=64"`
}

// DecodeResponse veredicto del filtro y, si fue aceptado, el resultado de la resolución.
// Outcome: found, not_found o failed; vacío cuando el decode fue descartado.
type DecodeResponse struct {
	Verdict     string `json:"verdict"` // accepted, duplicate, busy, cooldown
	Outcome     string `json:"outcome,omitempty"`
	Message     string `json:"message,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
	ProductID   string `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
	StockBefore int    `json:"stock_before,omitempty"`
	StockAfter  int    `json:"stock_after,omitempty"`
}

// ScanRecordResponse una entrada del historial de escaneos.
type ScanRecordResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Barcode     string    `json:"barcode"`
	StockBefore int       `json:"stock_before"`
	StockAfter  int       `json:"stock_after"`
	ScannedAt   time.Time `json:"scanned_at"`
}

// ScanHistoryResponse historial de escaneos del usuario, más reciente primero.
type ScanHistoryResponse struct {
	Items []ScanRecordResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
