package media

import (
	"bytes"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/jhoicas/InvenScan-api/internal/application/dto"
	"github.com/jhoicas/InvenScan-api/internal/domain"
	"github.com/jhoicas/InvenScan-api/internal/domain/repository"
)

// Tipos de imagen aceptados y su extensión en el store. El tipo se
// detecta por los bytes del contenido, nunca por el header del cliente.
var allowedContentTypes = map[string]string{
	"image/webp": ".webp",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// UseCase sube y elimina imágenes de producto en el object storage,
// manteniendo la ruta vigente en el producto.
type UseCase struct {
	storage    ObjectStorage
	products   repository.ProductRepository
	publicPath string // prefijo bajo el que el servidor expone las imágenes
	maxSize    int64  // bytes
}

// NewUseCase construye el caso de uso de imágenes.
func NewUseCase(storage ObjectStorage, products repository.ProductRepository, publicPath string, maxSizeMB int) *UseCase {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &UseCase{
		storage:    storage,
		products:   products,
		publicPath: strings.TrimSuffix(publicPath, "/"),
		maxSize:    int64(maxSizeMB) << 20,
	}
}

// MaxSize tamaño máximo aceptado en bytes.
func (uc *UseCase) MaxSize() int64 { return uc.maxSize }

// UploadProductImage guarda la imagen, actualiza la ruta del producto y
// elimina la imagen anterior si existía (best-effort). El tipo se detecta
// de los primeros bytes del contenido; un payload que no sea una imagen
// soportada o que exceda el tamaño máximo se rechaza con ErrInvalidInput.
func (uc *UseCase) UploadProductImage(userID, productID string, r io.Reader) (*dto.UploadImageResponse, error) {
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.UserID != userID {
		return nil, domain.ErrNotOwner
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	head = head[:n]
	ext, ok := allowedContentTypes[http.DetectContentType(head)]
	if !ok {
		return nil, domain.ErrInvalidInput
	}

	body := &countingReader{r: io.LimitReader(io.MultiReader(bytes.NewReader(head), r), uc.maxSize+1)}
	stored, err := uc.storage.Put(userID, body, ext)
	if err != nil {
		return nil, err
	}
	if body.n > uc.maxSize {
		_ = uc.storage.Delete(userID, stored)
		return nil, domain.ErrInvalidInput
	}
	if err := uc.products.UpdateImagePath(productID, stored); err != nil {
		// El producto no quedó apuntando a la imagen: no dejar el blob huérfano.
		_ = uc.storage.Delete(userID, stored)
		return nil, err
	}
	if product.ImagePath != "" {
		_ = uc.storage.Delete(userID, product.ImagePath)
	}
	return &dto.UploadImageResponse{
		ProductID: productID,
		Path:      stored,
		URL:       uc.publicPath + "/" + stored,
	}, nil
}

// countingReader cuenta los bytes leídos para detectar un payload que
// supera el tope aun cuando el LimitReader lo corta en silencio.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// DeleteProductImage elimina la imagen del producto y limpia la referencia.
func (uc *UseCase) DeleteProductImage(userID, productID string) error {
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.UserID != userID {
		return domain.ErrNotOwner
	}
	if product.ImagePath == "" {
		return nil
	}
	if err := uc.storage.Delete(userID, product.ImagePath); err != nil {
		return err
	}
	return uc.products.UpdateImagePath(productID, "")
}

// PublicURL construye la URL pública de una ruta del store.
func (uc *UseCase) PublicURL(stored string) string {
	if stored == "" {
		return ""
	}
	return path.Join(uc.publicPath, stored)
}
