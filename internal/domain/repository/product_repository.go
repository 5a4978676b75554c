package repository

import "github.com/jhoicas/InvenScan-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// IncrementStock debe ser una mutación atómica en una sola sentencia:
// devuelve el stock resultante sin que el llamador lea y reescriba,
// para evitar lost updates entre sesiones de escaneo concurrentes.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByUserAndBarcode(userID, barcode string) (*entity.Product, error)
	Update(product *entity.Product) error
	UpdateImagePath(productID, imagePath string) error
	IncrementStock(productID, userID string, delta int) (stockAfter int, err error)
	ListByUser(userID string, limit, offset int) ([]*entity.Product, error)
	ListLowStock(userID string) ([]*entity.Product, error)
	Delete(id string) error
}
