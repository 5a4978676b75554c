package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jhoicas/InvenScan-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGuardaBajoPrefijoDelUsuario(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	rel, err := s.Put("user-1", strings.NewReader("imagen"), ".webp")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, "products/user-1/"), "ruta: %s", rel)
	assert.True(t, strings.HasSuffix(rel, ".webp"), "ruta: %s", rel)

	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "imagen", string(data))
}

func TestPutGeneraNombresDistintos(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	a, err := s.Put("user-1", strings.NewReader("a"), ".png")
	require.NoError(t, err)
	b, err := s.Put("user-1", strings.NewReader("b"), ".png")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDeleteEliminaElBlob(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	rel, err := s.Put("user-1", strings.NewReader("imagen"), ".jpg")
	require.NoError(t, err)

	require.NoError(t, s.Delete("user-1", rel))
	_, err = os.Stat(filepath.Join(s.root, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteEsIdempotente(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, s.Delete("user-1", "products/user-1/inexistente.webp"))
}

func TestDeleteRechazaRutaDeOtroUsuario(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	rel, err := s.Put("user-1", strings.NewReader("imagen"), ".webp")
	require.NoError(t, err)

	err = s.Delete("user-2", rel)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	// El blob del dueño sigue intacto.
	_, err = os.Stat(filepath.Join(s.root, filepath.FromSlash(rel)))
	assert.NoError(t, err)
}

func TestDeleteRechazaEscapeDeRaiz(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	err = s.Delete("user-1", "products/user-1/../../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}
