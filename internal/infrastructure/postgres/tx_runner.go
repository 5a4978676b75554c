package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/InvenScan-api/internal/application/scan"
	"github.com/jhoicas/InvenScan-api/internal/domain/repository"
)

var _ scan.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción, con repositorios
// re-construidos sobre la tx para que toda operación del callback comparta
// el mismo alcance transaccional.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el ejecutor de transacciones.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run abre una transacción, invoca fn con repositorios atados a ella y
// confirma si fn devuelve nil. Cualquier error revierte todo.
func (t *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	scanRepo repository.ScanRepository,
) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(NewProductRepository(tx), NewScanRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
