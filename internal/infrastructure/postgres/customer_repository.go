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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementação de CustomerRepository.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID obtém o cliente. O endereço é um JSONB que pode estar em qualquer
// das duas convenções de chaves (legada em inglês ou fiscal em português).
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	const query = `
		SELECT id, name, COALESCE(tax_id, ''), COALESCE(state_tax_id, ''),
		       COALESCE(state_tax_ind, ''), COALESCE(email, ''), address
		FROM customers WHERE id = $1`

	var (
		c           entity.Customer
		addressJSON []byte
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.TaxID, &c.StateTaxID, &c.StateTaxInd, &c.Email, &addressJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if len(addressJSON) > 0 {
		var addr entity.Address
		if err := json.Unmarshal(addressJSON, &addr); err == nil {
			c.Address = &addr
		}
	}
	return &c, nil
}
