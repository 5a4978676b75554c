package scan

import (
	"context"

	"github.com/jhoicas/InvenScan-api/internal/domain/entity"
	"github.com/jhoicas/InvenScan-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el incremento de stock y el
// registro en el historial se confirmen (o reviertan) juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		scanRepo repository.ScanRepository,
	) error) error
}

// EventPublisher puerto de publicación del evento de stock actualizado.
// Puede ser nil: la publicación es best-effort y nunca falla el escaneo.
type EventPublisher interface {
	StockUpdated(ctx context.Context, record *entity.ScanRecord) error
}
