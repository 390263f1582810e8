package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/repository"
)

var _ repository.IssuerSettingsRepository = (*IssuerRepo)(nil)

// IssuerRepo implementação de IssuerSettingsRepository sobre store_settings.
type IssuerRepo struct {
	q Querier
}

// NewIssuerRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewIssuerRepository(q Querier) *IssuerRepo {
	return &IssuerRepo{q: q}
}

// Get devolve o cadastro ativo do emitente (single-tenant: uma linha).
func (r *IssuerRepo) Get(ctx context.Context) (*entity.IssuerSettings, error) {
	const query = `
		SELECT id, COALESCE(tax_id, ''), COALESCE(legal_name, ''),
		       COALESCE(trade_name, ''), COALESCE(state_tax_id, ''),
		       address, COALESCE(ambiente, 'homologacao'), COALESCE(serie_nfce, 1)
		FROM store_settings
		ORDER BY created_at DESC
		LIMIT 1`

	var (
		s           entity.IssuerSettings
		addressJSON []byte
	)
	err := r.q.QueryRow(ctx, query).Scan(
		&s.ID, &s.TaxID, &s.LegalName, &s.TradeName, &s.StateTaxID,
		&addressJSON, &s.Ambiente, &s.SerieNFCe,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("store_settings vazio: cadastre o emitente")
		}
		return nil, fmt.Errorf("get issuer settings: %w", err)
	}
	if len(addressJSON) > 0 {
		var addr entity.Address
		if err := json.Unmarshal(addressJSON, &addr); err == nil {
			s.Address = &addr
		}
	}
	return &s, nil
}
