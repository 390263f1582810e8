package fiscal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-usuario/pdv-fiscal/internal/domain"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
)

type failingSaleRepo struct{ err error }

func (f *failingSaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return nil, f.err
}

func TestFetcher_ClienteAusenteNaoFalha(t *testing.T) {
	sale := vendaTeste()
	sale.CustomerID = "cliente-removido"
	fetcher := NewRecordFetcher(&fakeSaleRepo{sale: sale}, &fakeCustomerRepo{}, &fakeIssuerRepo{issuer: issuerTeste()})

	records, err := fetcher.Load(context.Background(), "sale-1")
	require.NoError(t, err)
	assert.Nil(t, records.Customer, "cadastro sumido vira consumidor não identificado")
	assert.NotNil(t, records.Sale)
	assert.NotNil(t, records.Issuer)
}

func TestFetcher_VendaSemCliente(t *testing.T) {
	fetcher := NewRecordFetcher(&fakeSaleRepo{sale: vendaTeste()}, &fakeCustomerRepo{}, &fakeIssuerRepo{issuer: issuerTeste()})

	records, err := fetcher.Load(context.Background(), "sale-1")
	require.NoError(t, err)
	assert.Nil(t, records.Customer)
}

func TestFetcher_FalhaDeLookupViraFetchError(t *testing.T) {
	fetcher := NewRecordFetcher(&failingSaleRepo{err: errors.New("conexão recusada")}, &fakeCustomerRepo{}, &fakeIssuerRepo{issuer: issuerTeste()})

	_, err := fetcher.Load(context.Background(), "sale-1")

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "venda", fetchErr.Record)
}

func TestFetcher_VendaInexistente(t *testing.T) {
	fetcher := NewRecordFetcher(&fakeSaleRepo{}, &fakeCustomerRepo{}, &fakeIssuerRepo{issuer: issuerTeste()})

	_, err := fetcher.Load(context.Background(), "sale-x")
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}
