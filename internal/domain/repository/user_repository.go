package repository

import (
	"context"

	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
)

// UserRepository porta de leitura de operadores do PDV.
type UserRepository interface {
	// GetByEmail devolve nil, nil quando o usuário não existir.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
