package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/InvenScan-api/internal/application/dto"
	"github.com/jhoicas/InvenScan-api/internal/domain"
	"github.com/jhoicas/InvenScan-api/internal/domain/entity"
	"github.com/jhoicas/InvenScan-api/internal/domain/repository"
)

// EventPublisher puerto de publicación de eventos de dominio. Puede ser nil.
type EventPublisher interface {
	ProductCreated(ctx context.Context, product *entity.Product) error
}

// ProductUseCase casos de uso CRUD para productos. StockQuantity solo se
// muta vía escaneos (incremento atómico); Update no lo toca.
type ProductUseCase struct {
	repo      repository.ProductRepository
	publisher EventPublisher
}

// NewProductUseCase construye el caso de uso. publisher puede ser nil.
func NewProductUseCase(repo repository.ProductRepository, publisher EventPublisher) *ProductUseCase {
	return &ProductUseCase{repo: repo, publisher: publisher}
}

// Create crea un nuevo producto del usuario. Barcode único por usuario.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	existing, _ := uc.repo.GetByUserAndBarcode(userID, in.Barcode)
	if existing != nil {
		return nil, domain.ErrDuplicateBarcode
	}
	if in.StockQuantity < 0 || in.MinimumStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		UserID:        userID,
		Barcode:       in.Barcode,
		Name:          in.Name,
		Description:   in.Description,
		CategoryID:    in.CategoryID,
		Price:         in.Price,
		Cost:          in.Cost,
		StockQuantity: in.StockQuantity,
		MinimumStock:  in.MinimumStock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	if uc.publisher != nil {
		_ = uc.publisher.ProductCreated(ctx, product)
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID, validando que pertenezca al usuario.
func (uc *ProductUseCase) GetByID(userID, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if product.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	return toProductResponse(product), nil
}

// GetByBarcode obtiene un producto del usuario por código de barras exacto.
func (uc *ProductUseCase) GetByBarcode(userID, barcode string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByUserAndBarcode(userID, barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar StockQuantity ni Barcode.
func (uc *ProductUseCase) Update(userID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if product.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Cost != nil {
		product.Cost = *in.Cost
	}
	if in.MinimumStock != nil {
		if *in.MinimumStock < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.MinimumStock = *in.MinimumStock
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos del usuario con paginación.
func (uc *ProductUseCase) List(userID string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.ListByUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// ListLowStock lista productos en o por debajo de su stock mínimo.
func (uc *ProductUseCase) ListLowStock(userID string) (*dto.ProductListResponse, error) {
	list, err := uc.repo.ListLowStock(userID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items}, nil
}

// Delete elimina un producto del usuario.
func (uc *ProductUseCase) Delete(userID, id string) error {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.UserID != userID {
		return domain.ErrNotOwner
	}
	return uc.repo.Delete(id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		Barcode:       p.Barcode,
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		Price:         p.Price,
		Cost:          p.Cost,
		StockQuantity: p.StockQuantity,
		MinimumStock:  p.MinimumStock,
		LowStock:      p.LowStock(),
		ImageURL:      p.ImagePath,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
