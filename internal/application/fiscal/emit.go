package fiscal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seu-usuario/pdv-fiscal/internal/domain"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
	domfiscal "github.com/seu-usuario/pdv-fiscal/internal/domain/fiscal"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/repository"
	"github.com/seu-usuario/pdv-fiscal/internal/infrastructure/nfce"
	"github.com/seu-usuario/pdv-fiscal/pkg/logger"
)

// EmitInvoiceUseCase orquestra o ciclo de emissão da NFC-e:
//
//	carregar registros → token OAuth → montar documento → submeter →
//	{autorizada: arquivar PDF + upsert authorized |
//	 rejeitada: tentar recuperação de duplicidade, senão upsert rejected}
//
// Não há retry automático além da única tentativa de recuperação: rejeições
// são terminais para a requisição e a reemissão fica a cargo do caller — o
// upsert por sale_id torna a reemissão idempotente no log.
type EmitInvoiceUseCase struct {
	fetcher *RecordFetcher
	auth    nfce.TokenProvider
	gateway nfce.Gateway
	logs    repository.InvoiceLogRepository
	files   ArchiveStore
	log     *logger.Logger
}

// NewEmitInvoiceUseCase constrói o caso de uso com todas as dependências.
func NewEmitInvoiceUseCase(fetcher *RecordFetcher, auth nfce.TokenProvider, gateway nfce.Gateway, logs repository.InvoiceLogRepository, files ArchiveStore, log *logger.Logger) *EmitInvoiceUseCase {
	return &EmitInvoiceUseCase{
		fetcher: fetcher,
		auth:    auth,
		gateway: gateway,
		logs:    logs,
		files:   files,
		log:     log,
	}
}

// Emit emite a NFC-e da venda. manualTaxID é o CPF/CNPJ opcional informado na
// requisição ("CPF na nota"). Devolve o registro de log resultante; erro
// tipado descreve o desfecho quando não autorizada.
func (uc *EmitInvoiceUseCase) Emit(ctx context.Context, saleID, manualTaxID string) (*entity.InvoiceLog, error) {
	records, err := uc.fetcher.Load(ctx, saleID)
	if err != nil {
		return nil, err
	}

	doc, err := nfce.MontarDocumento(nfce.BuildInput{
		Sale:        records.Sale,
		Customer:    records.Customer,
		Issuer:      records.Issuer,
		ManualTaxID: manualTaxID,
		Now:         time.Now(),
	})
	if err != nil {
		return nil, err
	}

	token, err := uc.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	res, err := uc.gateway.Emitir(ctx, token, doc)
	if err != nil {
		return nil, err
	}

	ambiente := records.Issuer.Ambiente
	if res.Sucesso {
		return uc.registrarAutorizada(ctx, token, saleID, ambiente, res.Nota)
	}

	// Rejeição com assinatura de duplicidade: a nota pode já existir no
	// gateway; recuperar antes de desistir.
	if nfce.EhDuplicidade(res.Motivo) {
		return uc.recuperarDuplicada(ctx, token, records, res)
	}

	if err := uc.registrarRejeitada(ctx, saleID, res.Motivo); err != nil {
		return nil, err
	}
	return nil, &domain.FiscalRejectionError{Reason: res.Motivo}
}

// registrarAutorizada arquiva o PDF e grava o log authorized.
func (uc *EmitInvoiceUseCase) registrarAutorizada(ctx context.Context, token, saleID, ambiente string, nota *nfce.NotaResumo) (*entity.InvoiceLog, error) {
	pdfURL := uc.arquivarPDF(ctx, token, saleID, ambiente, nota)

	log := &entity.InvoiceLog{
		ID:         uuid.New().String(),
		SaleID:     saleID,
		Status:     entity.InvoiceStatusAuthorized,
		ExternalID: nota.ID,
		AccessKey:  nota.Chave,
		XMLURL:     nota.XMLURL,
		PDFURL:     pdfURL,
		QRCodeURL:  nota.QRCodeURL,
		UpdatedAt:  time.Now(),
	}
	if err := uc.logs.Upsert(ctx, log); err != nil {
		return nil, fmt.Errorf("persistir log da nota autorizada: %w", err)
	}
	uc.log.Info().Str("sale_id", saleID).Str("external_id", nota.ID).Msg("NFC-e autorizada")
	return log, nil
}

// recuperarDuplicada trata a rejeição por duplicidade: com a chave que a
// classificação extraiu do motivo, consulta o gateway e, encontrando exatamente
// uma nota, assume-a como autoritativa e devolve sucesso como se a submissão
// original tivesse passado. Qualquer falha no caminho abandona a recuperação e
// registra a rejeição original anotada com o diagnóstico — nunca silenciosamente.
func (uc *EmitInvoiceUseCase) recuperarDuplicada(ctx context.Context, token string, records *Records, res *nfce.Resultado) (*entity.InvoiceLog, error) {
	saleID := records.Sale.ID
	ambiente := records.Issuer.Ambiente
	motivo := res.Motivo

	abandonar := func(diagnostico string) (*entity.InvoiceLog, error) {
		anotado := fmt.Sprintf("%s | recuperação de duplicidade: %s", motivo, diagnostico)
		if err := uc.registrarRejeitada(ctx, saleID, anotado); err != nil {
			return nil, err
		}
		return nil, &domain.RecoveryExhaustedError{Reason: motivo, Diagnostic: diagnostico}
	}

	chave := res.ChaveDuplicada
	if chave == "" {
		return abandonar("chave de acesso não encontrada no motivo")
	}

	cnpj := domfiscal.OnlyDigits(records.Issuer.TaxID)
	notas, err := uc.gateway.ConsultarPorChave(ctx, token, chave, cnpj, ambiente)
	if err != nil {
		return abandonar("consulta falhou: " + err.Error())
	}
	if len(notas) != 1 {
		return abandonar(fmt.Sprintf("esperava exatamente 1 nota para a chave, encontrou %d", len(notas)))
	}

	uc.log.Warn().Str("sale_id", saleID).Str("chave", chave).
		Msg("duplicidade recuperada: nota já existia no gateway")
	nota := notas[0]
	return uc.registrarAutorizada(ctx, token, saleID, ambiente, &nota)
}

func (uc *EmitInvoiceUseCase) registrarRejeitada(ctx context.Context, saleID, motivo string) error {
	log := &entity.InvoiceLog{
		ID:        uuid.New().String(),
		SaleID:    saleID,
		Status:    entity.InvoiceStatusRejected,
		LastError: motivo,
		UpdatedAt: time.Now(),
	}
	if err := uc.logs.Upsert(ctx, log); err != nil {
		return fmt.Errorf("persistir log da rejeição: %w", err)
	}
	return nil
}

// arquivarPDF baixa a representação em PDF da nota e a re-envia para o object
// storage, nomeando por sale_id + timestamp para não colidir entre retries.
// Falha aqui é estritamente não-fatal: loga e cai para o link do próprio
// gateway — o status autorizado jamais regride por problema de storage.
func (uc *EmitInvoiceUseCase) arquivarPDF(ctx context.Context, token, saleID, ambiente string, nota *nfce.NotaResumo) string {
	conteudo, err := uc.gateway.BaixarPDF(ctx, token, nota.ID, ambiente)
	if err != nil {
		uc.log.Warn().Err(err).Str("sale_id", saleID).Msg("download do PDF falhou; usando link do gateway")
		return nota.PDFURL
	}

	caminho := fmt.Sprintf("nfce/%s-%d.pdf", saleID, time.Now().Unix())
	url, err := uc.files.Upload(ctx, caminho, conteudo, "application/pdf")
	if err != nil {
		uc.log.Warn().Err(err).Str("sale_id", saleID).Msg("upload do PDF falhou; usando link do gateway")
		return nota.PDFURL
	}
	return url
}

// Status devolve o registro corrente da nota de uma venda (polling do PDV).
func (uc *EmitInvoiceUseCase) Status(ctx context.Context, saleID string) (*entity.InvoiceLog, error) {
	log, err := uc.logs.GetBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, domain.ErrNotFound
	}
	return log, nil
}
