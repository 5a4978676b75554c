package scanner

import (
	"context"
	"errors"
)

// Errores de resolución. El resolver debe envolver sus fallos con estos
// sentinelas para que el kind de la consulta y el del incremento se
// distingan en el feedback.
var (
	// ErrProductNotFound el código no corresponde a ningún producto del usuario.
	ErrProductNotFound = errors.New("producto no encontrado para el código escaneado")
	// ErrLookup fallo de red/servicio durante la consulta por código.
	ErrLookup = errors.New("fallo consultando el producto")
	// ErrUpdate fallo de red/servicio durante el incremento de stock.
	// La consulta ya resolvió; el stock queda sin cambios (el incremento es
	// una sola mutación remota, nunca parcial).
	ErrUpdate = errors.New("fallo actualizando el stock")
)

// Resolution resultado de resolver un escaneo aceptado.
type Resolution struct {
	Code        string
	ProductID   string
	ProductName string
	StockBefore int
	StockAfter  int
}

// Resolver resuelve un código aceptado: consulta el producto y, si existe,
// aplica exactamente un incremento de stock. Contrato:
//   - producto encontrado e incrementado: Resolution completa, err nil
//   - producto inexistente: err envuelve ErrProductNotFound
//   - fallo de consulta: err envuelve ErrLookup (ninguna mutación emitida)
//   - fallo de incremento: err envuelve ErrUpdate (stock sin cambios)
//
// La consulta siempre resuelve (o falla) antes de intentar el incremento.
type Resolver interface {
	Resolve(ctx context.Context, code string) (Resolution, error)
}

// ResolverFunc adaptador función -> Resolver.
type ResolverFunc func(ctx context.Context, code string) (Resolution, error)

// Resolve implementa Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, code string) (Resolution, error) {
	return f(ctx, code)
}
