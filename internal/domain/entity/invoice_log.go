package entity

import "time"

// Status possíveis de uma nota no invoice_logs.
const (
	InvoiceStatusAuthorized = "authorized"
	InvoiceStatusRejected   = "rejected"
	InvoiceStatusCancelled  = "cancelled"
)

// InvoiceLog registro de estado corrente da nota fiscal de uma venda.
// Uma linha por sale_id (constraint única): cada tentativa de emissão ou
// cancelamento sobrescreve via upsert. Não é um histórico append-only.
type InvoiceLog struct {
	ID         string
	SaleID     string
	Status     string // authorized | rejected | cancelled
	ExternalID string // id da nota no gateway
	AccessKey  string // chave de acesso de 44 dígitos (chNFe)
	XMLURL     string
	PDFURL     string
	QRCodeURL  string
	LastError  string // motivo de rejeição ou justificativa de cancelamento
	UpdatedAt  time.Time
}
