package repository

import (
	"context"

	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
)

// SaleRepository porta de leitura de vendas para a emissão fiscal.
type SaleRepository interface {
	// GetByID carrega a venda com itens (produto + snapshot fiscal) e pagamentos.
	// Devolve nil, nil quando não existir.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
}
