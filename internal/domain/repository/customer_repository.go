package repository

import (
	"context"

	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
)

// CustomerRepository porta de leitura de clientes.
type CustomerRepository interface {
	// GetByID devolve nil, nil quando o cliente não existir.
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}
