// Package storage implementa el object storage de imágenes sobre el
// sistema de archivos local. Las rutas devueltas son relativas a la raíz
// y aptas para servirse como estáticos.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhoicas/InvenScan-api/internal/application/media"
	"github.com/jhoicas/InvenScan-api/internal/domain"
)

var _ media.ObjectStorage = (*Local)(nil)

// Local almacén de blobs en disco bajo un directorio raíz.
type Local struct {
	root string
}

// NewLocal construye el almacén y crea el directorio raíz si no existe.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("crear raíz de storage: %w", err)
	}
	return &Local{root: root}, nil
}

// Put guarda el contenido bajo products/{userID}/{timestamp}-{random}{ext}
// y devuelve esa ruta relativa.
func (s *Local) Put(userID string, r io.Reader, ext string) (string, error) {
	if userID == "" {
		return "", domain.ErrInvalidInput
	}
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generar sufijo: %w", err)
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(buf), ext)
	rel := filepath.ToSlash(filepath.Join("products", userID, name))

	dir := filepath.Join(s.root, "products", userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("crear directorio de usuario: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("crear blob: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("escribir blob: %w", err)
	}
	return rel, nil
}

// Delete elimina un blob. La ruta debe pertenecer al usuario: cualquier
// ruta fuera de products/{userID}/ se rechaza con ErrNotOwner.
func (s *Local) Delete(userID, path string) error {
	prefix := "products/" + userID + "/"
	if userID == "" || !strings.HasPrefix(path, prefix) {
		return domain.ErrNotOwner
	}
	// Rechazar rutas que escapen de la raíz.
	clean := filepath.Clean(filepath.FromSlash(path))
	if strings.Contains(path, "..") || filepath.IsAbs(clean) {
		return domain.ErrNotOwner
	}
	err := os.Remove(filepath.Join(s.root, clean))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("eliminar blob: %w", err)
	}
	return nil
}
