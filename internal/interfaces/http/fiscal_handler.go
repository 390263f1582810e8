package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	appfiscal "github.com/seu-usuario/pdv-fiscal/internal/application/fiscal"
	"github.com/seu-usuario/pdv-fiscal/internal/application/dto"
	"github.com/seu-usuario/pdv-fiscal/internal/domain"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
	"github.com/seu-usuario/pdv-fiscal/pkg/logger"
)

// FiscalHandler trata as requisições de emissão e cancelamento de NFC-e (protegido).
type FiscalHandler struct {
	emitUC   *appfiscal.EmitInvoiceUseCase
	cancelUC *appfiscal.CancelInvoiceUseCase
	log      *logger.Logger
}

// NewFiscalHandler constrói o handler.
func NewFiscalHandler(emitUC *appfiscal.EmitInvoiceUseCase, cancelUC *appfiscal.CancelInvoiceUseCase, log *logger.Logger) *FiscalHandler {
	return &FiscalHandler{emitUC: emitUC, cancelUC: cancelUC, log: log}
}

// Process emite ou cancela a nota conforme action.
// POST /api/fiscal/nfce
func (h *FiscalHandler) Process(c *fiber.Ctx) error {
	var in dto.EmitInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "corpo inválido"})
	}
	if in.SaleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "sale_id é obrigatório"})
	}

	switch in.Action {
	case "", dto.ActionEmit:
		log, err := h.emitUC.Emit(c.Context(), in.SaleID, in.CPFNaNota)
		if err != nil {
			return h.mapError(c, in.SaleID, err)
		}
		return c.JSON(dto.MessageResponse{Message: "nota autorizada", Data: toLogResponse(log)})
	case dto.ActionCancel:
		log, err := h.cancelUC.Cancel(c.Context(), in.SaleID, in.Reason)
		if err != nil {
			return h.mapError(c, in.SaleID, err)
		}
		return c.JSON(dto.MessageResponse{Message: "nota cancelada", Data: toLogResponse(log)})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "action desconhecida: " + in.Action})
	}
}

// Status devolve o estado corrente da nota de uma venda.
// GET /api/fiscal/nfce/:saleID
func (h *FiscalHandler) Status(c *fiber.Ctx) error {
	saleID := c.Params("saleID")
	if saleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "saleID é obrigatório"})
	}
	log, err := h.emitUC.Status(c.Context(), saleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "nenhuma nota registrada para esta venda"})
		}
		return h.mapError(c, saleID, err)
	}
	return c.JSON(dto.MessageResponse{Message: "ok", Data: toLogResponse(log)})
}

// mapError traduz a taxonomia de erros do domínio para HTTP: 400 para rejeição
// fiscal e validação, 401 nunca chega aqui (middleware), 500 genérico para o
// resto — o inesperado é logado contra a venda e não derruba o processo.
func (h *FiscalHandler) mapError(c *fiber.Ctx, saleID string, err error) error {
	var (
		authErr      *domain.AuthenticationError
		fetchErr     *domain.FetchError
		rejectErr    *domain.FiscalRejectionError
		recoveryErr  *domain.RecoveryExhaustedError
		cancelRejErr *domain.CancellationRejectionError
	)
	switch {
	case errors.Is(err, domain.ErrSaleNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "venda não encontrada"})
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrIncompleteIssuer),
		errors.Is(err, domain.ErrMissingCredentials),
		errors.Is(err, domain.ErrShortJustification),
		errors.Is(err, domain.ErrNoAuthorizedInvoice):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.As(err, &rejectErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "nota rejeitada pelo gateway", Details: rejectErr.Reason,
		})
	case errors.As(err, &recoveryErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "nota rejeitada pelo gateway", Details: recoveryErr.Error(),
		})
	case errors.As(err, &cancelRejErr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "cancelamento recusado", Details: cancelRejErr.Reason,
		})
	case errors.As(err, &authErr):
		h.log.Error().Err(err).Str("sale_id", saleID).Msg("autenticação no gateway falhou")
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "falha de autenticação no gateway fiscal"})
	case errors.As(err, &fetchErr):
		h.log.Error().Err(err).Str("sale_id", saleID).Msg("falha carregando registros")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "falha ao carregar registros da venda"})
	default:
		h.log.Error().Err(err).Str("sale_id", saleID).Msg("erro inesperado na emissão")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "erro interno"})
	}
}

func toLogResponse(log *entity.InvoiceLog) dto.InvoiceLogResponse {
	return dto.InvoiceLogResponse{
		SaleID:     log.SaleID,
		Status:     log.Status,
		ExternalID: log.ExternalID,
		AccessKey:  log.AccessKey,
		XMLURL:     log.XMLURL,
		PDFURL:     log.PDFURL,
		QRCodeURL:  log.QRCodeURL,
		LastError:  log.LastError,
		UpdatedAt:  log.UpdatedAt,
	}
}
