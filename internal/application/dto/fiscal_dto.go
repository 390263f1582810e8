package dto

import "time"

// Ações aceitas em EmitInvoiceRequest.Action.
const (
	ActionEmit   = "emit"
	ActionCancel = "cancel"
)

// EmitInvoiceRequest body de POST /api/fiscal/nfce.
// CPFNaNota, quando presente, tem prioridade sobre o CPF do cliente cadastrado.
type EmitInvoiceRequest struct {
	SaleID    string `json:"sale_id"`
	CPFNaNota string `json:"cpfNaNota,omitempty"`
	Action    string `json:"action,omitempty"` // "emit" (default) | "cancel"
	Reason    string `json:"reason,omitempty"` // justificativa do cancelamento (mín. 15 caracteres)
}

// InvoiceLogResponse estado corrente da nota de uma venda.
type InvoiceLogResponse struct {
	SaleID     string    `json:"sale_id"`
	Status     string    `json:"status"` // authorized | rejected | cancelled
	ExternalID string    `json:"external_id,omitempty"`
	AccessKey  string    `json:"access_key,omitempty"`
	XMLURL     string    `json:"xml_url,omitempty"`
	PDFURL     string    `json:"pdf_url,omitempty"`
	QRCodeURL  string    `json:"qrcode_url,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}
