package fiscal

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/seu-usuario/pdv-fiscal/internal/domain"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/repository"
	"github.com/seu-usuario/pdv-fiscal/internal/infrastructure/nfce"
	"github.com/seu-usuario/pdv-fiscal/pkg/logger"
)

// Comprimento mínimo da justificativa exigido pela SEFAZ.
const minJustificativa = 15

// CancelInvoiceUseCase anula uma nota previamente autorizada.
// Pré-condições validadas antes de qualquer chamada de rede: justificativa com
// ao menos 15 caracteres e log existente com status authorized.
type CancelInvoiceUseCase struct {
	auth    nfce.TokenProvider
	gateway nfce.Gateway
	logs    repository.InvoiceLogRepository
	issuers repository.IssuerSettingsRepository
	log     *logger.Logger
}

// NewCancelInvoiceUseCase constrói o caso de uso de cancelamento.
func NewCancelInvoiceUseCase(auth nfce.TokenProvider, gateway nfce.Gateway, logs repository.InvoiceLogRepository, issuers repository.IssuerSettingsRepository, log *logger.Logger) *CancelInvoiceUseCase {
	return &CancelInvoiceUseCase{auth: auth, gateway: gateway, logs: logs, issuers: issuers, log: log}
}

// Cancel cancela a nota autorizada da venda. Em falha do gateway o log fica
// intocado (ainda authorized): cancelamento falho jamais marca a nota como
// anulada silenciosamente.
func (uc *CancelInvoiceUseCase) Cancel(ctx context.Context, saleID, reason string) (*entity.InvoiceLog, error) {
	if utf8.RuneCountInString(reason) < minJustificativa {
		return nil, domain.ErrShortJustification
	}

	invLog, err := uc.logs.GetBySaleID(ctx, saleID)
	if err != nil {
		return nil, &domain.FetchError{Record: "log da nota", Err: err}
	}
	if invLog == nil || invLog.Status != entity.InvoiceStatusAuthorized {
		return nil, domain.ErrNoAuthorizedInvoice
	}

	issuer, err := uc.issuers.Get(ctx)
	if err != nil {
		return nil, &domain.FetchError{Record: "configurações do emitente", Err: err}
	}

	token, err := uc.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	res, err := uc.gateway.Cancelar(ctx, token, invLog.ExternalID, reason, issuer.Ambiente)
	if err != nil {
		return nil, err
	}
	if !res.Sucesso {
		return nil, &domain.CancellationRejectionError{Reason: res.Motivo}
	}

	invLog.Status = entity.InvoiceStatusCancelled
	// Justificativa fica no campo de erro para auditoria.
	invLog.LastError = fmt.Sprintf("cancelada: %s", reason)
	invLog.UpdatedAt = time.Now()
	if err := uc.logs.Upsert(ctx, invLog); err != nil {
		return nil, fmt.Errorf("persistir log do cancelamento: %w", err)
	}

	uc.log.Info().Str("sale_id", saleID).Str("external_id", invLog.ExternalID).Msg("NFC-e cancelada")
	return invLog, nil
}
