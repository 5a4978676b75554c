package media

import "io"

// ObjectStorage puerto del almacén de imágenes de producto. Las rutas
// siguen la convención products/{user_id}/{timestamp}-{random}{ext};
// Delete exige que la ruta pertenezca al usuario (prefijo products/{user_id}/).
type ObjectStorage interface {
	Put(userID string, r io.Reader, ext string) (path string, err error)
	Delete(userID, path string) error
}
