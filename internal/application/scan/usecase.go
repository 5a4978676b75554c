package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/InvenScan-api/internal/application/dto"
	"github.com/jhoicas/InvenScan-api/internal/domain/entity"
	"github.com/jhoicas/InvenScan-api/internal/domain/repository"
	"github.com/jhoicas/InvenScan-api/internal/scanner"
	"github.com/jhoicas/InvenScan-api/pkg/logger"
)

// UseCase resuelve escaneos aceptados: consulta el producto por código,
// aplica exactamente un incremento atómico de stock y registra la entrada
// en el historial. La consulta siempre resuelve antes de intentar el
// incremento; ninguna mutación queda a medias.
type UseCase struct {
	products  repository.ProductRepository
	scans     repository.ScanRepository
	txRunner  TxRunner
	publisher EventPublisher // puede ser nil
	log       *logger.Logger
}

// NewUseCase construye el caso de uso de escaneo.
func NewUseCase(
	txRunner TxRunner,
	products repository.ProductRepository,
	scans repository.ScanRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		products:  products,
		scans:     scans,
		txRunner:  txRunner,
		publisher: publisher,
		log:       log,
	}
}

// Resolve implementa el contrato de scanner.Resolver para un usuario:
//   - producto encontrado: incremento +1 en una sola sentencia y entrada
//     de historial en la misma transacción
//   - producto inexistente: scanner.ErrProductNotFound (el handler enruta
//     al flujo de crear producto con el código prellenado)
//   - fallo de consulta: scanner.ErrLookup; fallo de incremento: scanner.ErrUpdate
func (uc *UseCase) Resolve(ctx context.Context, userID, code string) (scanner.Resolution, error) {
	product, err := uc.products.GetByUserAndBarcode(userID, code)
	if err != nil {
		return scanner.Resolution{Code: code}, fmt.Errorf("%w: %v", scanner.ErrLookup, err)
	}
	if product == nil {
		return scanner.Resolution{Code: code}, scanner.ErrProductNotFound
	}

	var record *entity.ScanRecord
	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		scanRepo repository.ScanRepository,
	) error {
		stockAfter, err := productRepo.IncrementStock(product.ID, userID, 1)
		if err != nil {
			return err
		}
		record = &entity.ScanRecord{
			ID:          uuid.New().String(),
			UserID:      userID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Barcode:     code,
			StockBefore: stockAfter - 1,
			StockAfter:  stockAfter,
			ScannedAt:   time.Now(),
		}
		return scanRepo.Append(record)
	})
	if err != nil {
		return scanner.Resolution{Code: code}, fmt.Errorf("%w: %v", scanner.ErrUpdate, err)
	}

	if uc.publisher != nil {
		if err := uc.publisher.StockUpdated(ctx, record); err != nil {
			uc.log.Warn().Err(err).Str("product_id", product.ID).
				Msg("publicación del evento de escaneo fallida")
		}
	}

	return scanner.Resolution{
		Code:        code,
		ProductID:   product.ID,
		ProductName: product.Name,
		StockBefore: record.StockBefore,
		StockAfter:  record.StockAfter,
	}, nil
}

// ResolverFor adapta el caso de uso al puerto scanner.Resolver fijando el usuario.
func (uc *UseCase) ResolverFor(userID string) scanner.Resolver {
	return scanner.ResolverFunc(func(ctx context.Context, code string) (scanner.Resolution, error) {
		return uc.Resolve(ctx, userID, code)
	})
}

// History devuelve el historial de escaneos del usuario, más reciente primero.
func (uc *UseCase) History(userID string, limit, offset int) (*dto.ScanHistoryResponse, error) {
	list, err := uc.scans.ListByUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ScanRecordResponse, 0, len(list))
	for _, r := range list {
		items = append(items, dto.ScanRecordResponse{
			ID:          r.ID,
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Barcode:     r.Barcode,
			StockBefore: r.StockBefore,
			StockAfter:  r.StockAfter,
			ScannedAt:   r.ScannedAt,
		})
	}
	return &dto.ScanHistoryResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}
