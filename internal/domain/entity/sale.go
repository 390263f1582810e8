package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale representa uma venda concluída no PDV, pronta para emissão fiscal.
// CustomerID pode ser vazio: venda ao consumidor final não identificado.
type Sale struct {
	ID              string
	OrderNumber     string
	CustomerID      string
	Total           decimal.Decimal // total da cabeçalho; usado só no pagamento legado
	PaymentMethodID string          // método de pagamento da cabeçalho (vendas antigas, sem rateio)
	PaymentMethod   *PaymentMethod
	Installments    int // parcelas da cabeçalho (vendas antigas)
	DeliveryAddress *Address
	Items           []SaleItem
	Payments        []SalePayment
	CreatedAt       time.Time
}

// SaleItem linha da venda. Snapshot congela a classificação fiscal do produto
// no momento da venda; alterações posteriores no cadastro não afetam notas já emitidas.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Product   *Product
	Snapshot  *FiscalSnapshot
}

// FiscalSnapshot cópia da classificação fiscal do item capturada na venda.
// Campos vazios caem para o cadastro do produto e por fim para os defaults.
type FiscalSnapshot struct {
	NCM         string
	CFOP        string
	Unit        string // unidade comercial (UN, KG, ...)
	Description string
	CEST        string
}

// SalePayment pagamento rateado da venda.
type SalePayment struct {
	ID           string
	SaleID       string
	Amount       decimal.Decimal
	Installments int
	Method       *PaymentMethod
}

// PaymentMethod método de pagamento cadastrado, com o código esperado pelo gateway.
type PaymentMethod struct {
	ID          string
	Name        string
	GatewayCode string // tPag: "01" dinheiro, "03" crédito, "04" débito, "17" PIX, "99" outros
	IsCredit    bool
}
