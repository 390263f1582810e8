package repository

import (
	"context"

	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
)

// InvoiceLogRepository fonte única de verdade do status fiscal por venda.
type InvoiceLogRepository interface {
	// Upsert grava o estado corrente da nota; sale_id tem constraint única,
	// então reemissões sobrescrevem a linha anterior.
	Upsert(ctx context.Context, log *entity.InvoiceLog) error
	// GetBySaleID devolve nil, nil quando não houver registro para a venda.
	GetBySaleID(ctx context.Context, saleID string) (*entity.InvoiceLog, error)
}
