package media_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/InvenScan-api/internal/application/media"
	"github.com/jhoicas/InvenScan-api/internal/domain"
	"github.com/jhoicas/InvenScan-api/internal/domain/entity"
	"github.com/jhoicas/InvenScan-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeImageStore struct {
	stored  bytes.Buffer
	puts    int
	deleted []string
	putErr  error
}

func (f *fakeImageStore) Put(userID string, r io.Reader, ext string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts++
	if _, err := io.Copy(&f.stored, r); err != nil {
		return "", err
	}
	return "products/" + userID + "/nueva" + ext, nil
}

func (f *fakeImageStore) Delete(userID, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

type fakeMediaProducts struct {
	repository.ProductRepository

	product   *entity.Product
	imagePath string
	updateErr error
}

func (f *fakeMediaProducts) GetByID(id string) (*entity.Product, error) {
	if f.product == nil || f.product.ID != id {
		return nil, nil
	}
	return f.product, nil
}

func (f *fakeMediaProducts) UpdateImagePath(productID, imagePath string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.imagePath = imagePath
	return nil
}

// Firma PNG real: basta para que la detección por contenido la reconozca.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func pngPayload(extra int) []byte {
	return append(append([]byte{}, pngHeader...), make([]byte, extra)...)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestUploadProductImage_PNGValido(t *testing.T) {
	store := &fakeImageStore{}
	products := &fakeMediaProducts{product: &entity.Product{ID: "p1", UserID: "u1"}}
	uc := media.NewUseCase(store, products, "/media", 1)

	payload := pngPayload(100)
	out, err := uc.UploadProductImage("u1", "p1", bytes.NewReader(payload))
	require.NoError(t, err)

	assert.Equal(t, "products/u1/nueva.png", out.Path)
	assert.Equal(t, "/media/products/u1/nueva.png", out.URL)
	assert.Equal(t, out.Path, products.imagePath)
	assert.Equal(t, payload, store.stored.Bytes(), "el blob guardado debe ser el contenido completo")
	assert.Empty(t, store.deleted)
}

func TestUploadProductImage_ContenidoNoImagen(t *testing.T) {
	// El payload llega por multipart declarando ser una imagen, pero los
	// bytes son texto plano: se rechaza sin tocar el storage.
	store := &fakeImageStore{}
	products := &fakeMediaProducts{product: &entity.Product{ID: "p1", UserID: "u1"}}
	uc := media.NewUseCase(store, products, "/media", 1)

	_, err := uc.UploadProductImage("u1", "p1", bytes.NewReader([]byte("<script>alert(1)</script>")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, store.puts)
	assert.Empty(t, products.imagePath)
}

func TestUploadProductImage_ExcedeTamanoMaximo(t *testing.T) {
	// Un payload más grande que el tope no se trunca en silencio: se
	// rechaza y el blob parcial no queda huérfano en el storage.
	store := &fakeImageStore{}
	products := &fakeMediaProducts{product: &entity.Product{ID: "p1", UserID: "u1"}}
	uc := media.NewUseCase(store, products, "/media", 1)

	_, err := uc.UploadProductImage("u1", "p1", bytes.NewReader(pngPayload(1<<20)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, []string{"products/u1/nueva.png"}, store.deleted)
	assert.Empty(t, products.imagePath, "el producto no debe apuntar a un blob rechazado")
}

func TestUploadProductImage_ReemplazaImagenAnterior(t *testing.T) {
	store := &fakeImageStore{}
	products := &fakeMediaProducts{product: &entity.Product{ID: "p1", UserID: "u1", ImagePath: "products/u1/vieja.png"}}
	uc := media.NewUseCase(store, products, "/media", 1)

	out, err := uc.UploadProductImage("u1", "p1", bytes.NewReader(pngPayload(64)))
	require.NoError(t, err)
	assert.Equal(t, out.Path, products.imagePath)
	assert.Equal(t, []string{"products/u1/vieja.png"}, store.deleted)
}

func TestUploadProductImage_ProductoAjeno(t *testing.T) {
	store := &fakeImageStore{}
	products := &fakeMediaProducts{product: &entity.Product{ID: "p1", UserID: "otro"}}
	uc := media.NewUseCase(store, products, "/media", 1)

	_, err := uc.UploadProductImage("u1", "p1", bytes.NewReader(pngPayload(64)))
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.Zero(t, store.puts)
}
