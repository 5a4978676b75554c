package entity

import "time"

// User representa un usuario del sistema. Cada usuario es dueño de su
// propio inventario: productos, categorías, imágenes e historial de escaneos.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
