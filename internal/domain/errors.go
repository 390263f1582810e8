package domain

import (
	"errors"
	"fmt"
)

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound            = errors.New("recurso não encontrado")
	ErrUserNotFound        = errors.New("usuário não encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrUnauthorized        = errors.New("não autorizado")
	ErrSaleNotFound        = errors.New("venda não encontrada")
	ErrMissingCredentials  = errors.New("credenciais do gateway fiscal ausentes na configuração")
	ErrIncompleteIssuer    = errors.New("cadastro do emitente incompleto: CNPJ, logradouro e número são obrigatórios")
	ErrShortJustification  = errors.New("justificativa de cancelamento deve ter ao menos 15 caracteres")
	ErrNoAuthorizedInvoice = errors.New("não há nota autorizada registrada para esta venda")
)

// AuthenticationError falha na troca de credenciais por token no gateway.
// Body carrega a resposta crua do serviço de identidade para diagnóstico.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("autenticação no gateway fiscal falhou (status %d): %s", e.StatusCode, e.Body)
}

// FetchError falha ao carregar venda, cliente ou configurações do emitente.
type FetchError struct {
	Record string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("falha ao carregar %s: %v", e.Record, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FiscalRejectionError o gateway rejeitou logicamente o documento.
// Reason é o texto de motivo extraído da resposta.
type FiscalRejectionError struct {
	Reason string
}

func (e *FiscalRejectionError) Error() string {
	return "nota rejeitada pelo gateway: " + e.Reason
}

// RecoveryExhaustedError duplicidade detectada mas a recuperação não confirmou
// uma nota autorizada. Reason preserva a rejeição original; Diagnostic descreve
// por que a recuperação foi abandonada.
type RecoveryExhaustedError struct {
	Reason     string
	Diagnostic string
}

func (e *RecoveryExhaustedError) Error() string {
	return fmt.Sprintf("nota rejeitada pelo gateway: %s (recuperação de duplicidade falhou: %s)", e.Reason, e.Diagnostic)
}

// CancellationRejectionError o gateway recusou o cancelamento da nota.
type CancellationRejectionError struct {
	Reason string
}

func (e *CancellationRejectionError) Error() string {
	return "cancelamento recusado pelo gateway: " + e.Reason
}
