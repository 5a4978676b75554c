package scanner

import (
	"errors"
	"fmt"
)

// Notifier superficie de feedback hacia el usuario (toast, vibración, log).
type Notifier interface {
	Success(r Resolution, message string)
	Info(message string)
	Error(kind ErrorKind, message string)
}

// NopNotifier descarta todo el feedback.
type NopNotifier struct{}

func (NopNotifier) Success(Resolution, string) {}
func (NopNotifier) Info(string)                {}
func (NopNotifier) Error(ErrorKind, string)    {}

// SuccessMessage mensaje de éxito con el delta de stock.
func SuccessMessage(r Resolution) string {
	return fmt.Sprintf("%s: stock actualizado de %d a %d", r.ProductName, r.StockBefore, r.StockAfter)
}

// NotFoundMessage mensaje informativo cuando el código no existe.
func NotFoundMessage(code string) string {
	return fmt.Sprintf("No hay producto con el código %s. Puedes crearlo con el código prellenado", code)
}

// FailureMessage mensaje de error según el fallo de resolución.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrLookup):
		return "Error de red consultando el producto. Escanea de nuevo"
	case errors.Is(err, ErrUpdate):
		return "Error de red actualizando el stock. El stock no cambió, escanea de nuevo"
	default:
		return "Error inesperado procesando el escaneo. Escanea de nuevo"
	}
}
