package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/InvenScan-api/internal/domain"
	"github.com/jhoicas/InvenScan-api/internal/domain/entity"
	"github.com/jhoicas/InvenScan-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, user_id, barcode, name, description, category_id, price, cost, stock_quantity, minimum_stock, image_path, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.UserID, product.Barcode, product.Name, product.Description,
		product.CategoryID, product.Price, product.Cost, product.StockQuantity,
		product.MinimumStock, product.ImagePath, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateBarcode
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. Devuelve nil si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := r.scanOne(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByUserAndBarcode obtiene un producto del usuario por código exacto.
func (r *ProductRepo) GetByUserAndBarcode(userID, barcode string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE user_id = $1 AND barcode = $2`
	p, err := r.scanOne(r.q.QueryRow(context.Background(), query, userID, barcode))
	if err != nil {
		return nil, fmt.Errorf("get product by barcode: %w", err)
	}
	return p, nil
}

// Update actualiza un producto. StockQuantity no se toca por aquí: se
// maneja con IncrementStock para evitar lost updates.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, category_id = NULLIF($4, ''), price = $5,
			cost = $6, minimum_stock = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Name, product.Description, product.CategoryID,
		product.Price, product.Cost, product.MinimumStock, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// UpdateImagePath actualiza solo la ruta de la imagen del producto.
func (r *ProductRepo) UpdateImagePath(productID, imagePath string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE products SET image_path = $2, updated_at = now() WHERE id = $1`,
		productID, imagePath,
	)
	if err != nil {
		return fmt.Errorf("update product image: %w", err)
	}
	return nil
}

// IncrementStock aplica el delta en una sola sentencia atómica y devuelve
// el stock resultante. No hay read-modify-write del lado del cliente:
// dos sesiones de escaneo concurrentes sobre el mismo producto nunca se
// pisan un incremento.
func (r *ProductRepo) IncrementStock(productID, userID string, delta int) (int, error) {
	var stockAfter int
	err := r.q.QueryRow(context.Background(),
		`UPDATE products
		 SET stock_quantity = stock_quantity + $3, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING stock_quantity`,
		productID, userID, delta,
	).Scan(&stockAfter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("increment stock: %w", err)
	}
	return stockAfter, nil
}

// ListByUser lista productos del usuario con paginación.
func (r *ProductRepo) ListByUser(userID string, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListLowStock lista productos en o por debajo del stock mínimo.
func (r *ProductRepo) ListLowStock(userID string) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE user_id = $1 AND stock_quantity <= minimum_stock
		ORDER BY stock_quantity ASC`
	rows, err := r.q.Query(context.Background(), query, userID)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (r *ProductRepo) scanOne(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var categoryID, imagePath *string
	err := row.Scan(
		&p.ID, &p.UserID, &p.Barcode, &p.Name, &p.Description, &categoryID,
		&p.Price, &p.Cost, &p.StockQuantity, &p.MinimumStock, &imagePath,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if categoryID != nil {
		p.CategoryID = *categoryID
	}
	if imagePath != nil {
		p.ImagePath = *imagePath
	}
	return &p, nil
}

func (r *ProductRepo) scanAll(rows pgx.Rows) ([]*entity.Product, error) {
	var list []*entity.Product
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
