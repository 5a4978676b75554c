package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario de un usuario.
// Barcode es único por usuario (EAN-13/UPC tal como lo entrega el escáner).
// StockQuantity se muta únicamente vía incrementos atómicos en la capa de
// persistencia; nunca con read-modify-write del lado del cliente.
type Product struct {
	ID            string
	UserID        string
	Barcode       string
	Name          string
	Description   string
	CategoryID    string          // vacío si no tiene categoría
	Price         decimal.Decimal // precio de venta
	Cost          decimal.Decimal // costo de compra
	StockQuantity int
	MinimumStock  int    // umbral de alerta de stock bajo
	ImagePath     string // ruta en el object storage, vacío si no tiene imagen
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LowStock indica si el producto está en o por debajo del umbral mínimo.
func (p *Product) LowStock() bool {
	return p.StockQuantity <= p.MinimumStock
}
