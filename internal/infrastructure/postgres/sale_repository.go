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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementação de SaleRepository (usável com pool ou tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// GetByID carrega a venda com itens (produto + snapshot fiscal) e pagamentos.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	const query = `
		SELECT s.id, s.order_number, COALESCE(s.customer_id, ''), s.total,
		       COALESCE(s.payment_method_id, ''), COALESCE(s.installments, 1),
		       s.delivery_address, s.created_at,
		       COALESCE(pm.name, ''), COALESCE(pm.gateway_code, ''), COALESCE(pm.is_credit, false)
		FROM sales s
		LEFT JOIN payment_methods pm ON pm.id = s.payment_method_id
		WHERE s.id = $1`

	var (
		sale        entity.Sale
		addressJSON []byte
		method      entity.PaymentMethod
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&sale.ID, &sale.OrderNumber, &sale.CustomerID, &sale.Total,
		&sale.PaymentMethodID, &sale.Installments,
		&addressJSON, &sale.CreatedAt,
		&method.Name, &method.GatewayCode, &method.IsCredit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if sale.PaymentMethodID != "" {
		method.ID = sale.PaymentMethodID
		sale.PaymentMethod = &method
	}
	if len(addressJSON) > 0 {
		var addr entity.Address
		if err := json.Unmarshal(addressJSON, &addr); err == nil {
			sale.DeliveryAddress = &addr
		}
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items

	payments, err := r.loadPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Payments = payments

	return &sale, nil
}

// loadItems carrega as linhas com o cadastro fiscal do produto e o snapshot
// capturado na venda (colunas snapshot_* em sale_items).
func (r *SaleRepo) loadItems(ctx context.Context, saleID string) ([]entity.SaleItem, error) {
	const query = `
		SELECT i.id, i.sale_id, i.product_id, i.quantity, i.unit_price,
		       COALESCE(i.snapshot_ncm, ''), COALESCE(i.snapshot_cfop, ''),
		       COALESCE(i.snapshot_unit, ''), COALESCE(i.snapshot_description, ''),
		       COALESCE(i.snapshot_cest, ''),
		       COALESCE(p.name, ''), COALESCE(p.barcode, ''), COALESCE(p.ncm, ''),
		       COALESCE(p.cest, ''), COALESCE(p.cfop, ''), COALESCE(p.origin, ''),
		       COALESCE(p.unit, ''), COALESCE(p.description, '')
		FROM sale_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.sale_id = $1
		ORDER BY i.id`

	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	var items []entity.SaleItem
	for rows.Next() {
		var (
			item entity.SaleItem
			snap entity.FiscalSnapshot
			prod entity.Product
		)
		if err := rows.Scan(
			&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.UnitPrice,
			&snap.NCM, &snap.CFOP, &snap.Unit, &snap.Description, &snap.CEST,
			&prod.Name, &prod.Barcode, &prod.NCM, &prod.CEST, &prod.CFOP,
			&prod.Origin, &prod.Unit, &prod.Description,
		); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		prod.ID = item.ProductID
		item.Product = &prod
		if snap != (entity.FiscalSnapshot{}) {
			item.Snapshot = &snap
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *SaleRepo) loadPayments(ctx context.Context, saleID string) ([]entity.SalePayment, error) {
	const query = `
		SELECT sp.id, sp.sale_id, sp.amount, COALESCE(sp.installments, 1),
		       COALESCE(pm.id, ''), COALESCE(pm.name, ''),
		       COALESCE(pm.gateway_code, ''), COALESCE(pm.is_credit, false)
		FROM sale_payments sp
		LEFT JOIN payment_methods pm ON pm.id = sp.payment_method_id
		WHERE sp.sale_id = $1
		ORDER BY sp.id`

	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale payments: %w", err)
	}
	defer rows.Close()

	var payments []entity.SalePayment
	for rows.Next() {
		var (
			p      entity.SalePayment
			method entity.PaymentMethod
		)
		if err := rows.Scan(
			&p.ID, &p.SaleID, &p.Amount, &p.Installments,
			&method.ID, &method.Name, &method.GatewayCode, &method.IsCredit,
		); err != nil {
			return nil, fmt.Errorf("scan sale payment: %w", err)
		}
		if method.ID != "" {
			p.Method = &method
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
