package entity

import "time"

// Category representa una categoría de productos de un usuario.
type Category struct {
	ID        string
	UserID    string
	Name      string // único por usuario
	Color     string // hex para la UI, opcional
	CreatedAt time.Time
	UpdatedAt time.Time
}
