package entity

import "time"

// Papéis de usuário.
const (
	RoleAdmin    = "admin"
	RoleOperador = "operador"
)

// User operador do PDV autorizado a emitir e cancelar notas.
type User struct {
	ID           string
	StoreID      string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
