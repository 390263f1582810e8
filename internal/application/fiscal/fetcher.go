package fiscal

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/seu-usuario/pdv-fiscal/internal/domain"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/repository"
)

// Records conjunto de registros carregados para uma emissão.
// Customer é nil quando a venda não referencia cliente ou o cadastro sumiu —
// a nota sai como consumidor final não identificado, nunca falha por isso.
type Records struct {
	Sale     *entity.Sale
	Customer *entity.Customer
	Issuer   *entity.IssuerSettings
}

// RecordFetcher carrega venda (com itens e pagamentos) e configurações do
// emitente em paralelo; o cliente depende da venda e vem na sequência.
type RecordFetcher struct {
	sales     repository.SaleRepository
	customers repository.CustomerRepository
	issuers   repository.IssuerSettingsRepository
}

// NewRecordFetcher constrói o fetcher.
func NewRecordFetcher(sales repository.SaleRepository, customers repository.CustomerRepository, issuers repository.IssuerSettingsRepository) *RecordFetcher {
	return &RecordFetcher{sales: sales, customers: customers, issuers: issuers}
}

// Load carrega todos os registros da emissão. Falha de lookup vira FetchError;
// venda inexistente vira ErrSaleNotFound.
func (f *RecordFetcher) Load(ctx context.Context, saleID string) (*Records, error) {
	var (
		sale   *entity.Sale
		issuer *entity.IssuerSettings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := f.sales.GetByID(gctx, saleID)
		if err != nil {
			return &domain.FetchError{Record: "venda", Err: err}
		}
		sale = s
		return nil
	})
	g.Go(func() error {
		i, err := f.issuers.Get(gctx)
		if err != nil {
			return &domain.FetchError{Record: "configurações do emitente", Err: err}
		}
		issuer = i
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}

	records := &Records{Sale: sale, Issuer: issuer}
	if sale.CustomerID != "" {
		customer, err := f.customers.GetByID(ctx, sale.CustomerID)
		if err != nil {
			return nil, &domain.FetchError{Record: "cliente", Err: err}
		}
		records.Customer = customer
	}
	return records, nil
}
