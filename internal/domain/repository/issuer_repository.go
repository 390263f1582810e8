package repository

import (
	"context"

	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
)

// IssuerSettingsRepository porta de leitura do cadastro do emitente (loja).
type IssuerSettingsRepository interface {
	// Get devolve as configurações ativas do emitente.
	Get(ctx context.Context) (*entity.IssuerSettings, error)
}
