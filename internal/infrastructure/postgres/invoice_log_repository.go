package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/repository"
)

var _ repository.InvoiceLogRepository = (*InvoiceLogRepo)(nil)

// InvoiceLogRepo implementação de InvoiceLogRepository.
// sale_id tem constraint UNIQUE: o upsert garante uma única linha por venda,
// sobrescrita a cada tentativa (registro de estado corrente, não histórico).
type InvoiceLogRepo struct {
	q Querier
}

// NewInvoiceLogRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewInvoiceLogRepository(q Querier) *InvoiceLogRepo {
	return &InvoiceLogRepo{q: q}
}

// Upsert grava o estado corrente da nota da venda.
func (r *InvoiceLogRepo) Upsert(ctx context.Context, log *entity.InvoiceLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO invoice_logs (id, sale_id, status, external_id, access_key,
		                          xml_url, pdf_url, qrcode_url, last_error, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (sale_id) DO UPDATE SET
			status      = EXCLUDED.status,
			external_id = EXCLUDED.external_id,
			access_key  = EXCLUDED.access_key,
			xml_url     = EXCLUDED.xml_url,
			pdf_url     = EXCLUDED.pdf_url,
			qrcode_url  = EXCLUDED.qrcode_url,
			last_error  = EXCLUDED.last_error,
			updated_at  = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		log.ID, log.SaleID, log.Status,
		nullIfEmpty(log.ExternalID), nullIfEmpty(log.AccessKey),
		nullIfEmpty(log.XMLURL), nullIfEmpty(log.PDFURL), nullIfEmpty(log.QRCodeURL),
		nullIfEmpty(log.LastError), log.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert invoice log: %w", err)
	}
	return nil
}

// GetBySaleID obtém o registro corrente da venda.
func (r *InvoiceLogRepo) GetBySaleID(ctx context.Context, saleID string) (*entity.InvoiceLog, error) {
	const query = `
		SELECT id, sale_id, status, external_id, access_key,
		       xml_url, pdf_url, qrcode_url, last_error, updated_at
		FROM invoice_logs WHERE sale_id = $1`

	var (
		log                                               entity.InvoiceLog
		externalID, accessKey, xmlURL, pdfURL, qrURL, lastErr *string
	)
	err := r.q.QueryRow(ctx, query, saleID).Scan(
		&log.ID, &log.SaleID, &log.Status, &externalID, &accessKey,
		&xmlURL, &pdfURL, &qrURL, &lastErr, &log.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice log: %w", err)
	}
	log.ExternalID = derefStr(externalID)
	log.AccessKey = derefStr(accessKey)
	log.XMLURL = derefStr(xmlURL)
	log.PDFURL = derefStr(pdfURL)
	log.QRCodeURL = derefStr(qrURL)
	log.LastError = derefStr(lastErr)
	return &log, nil
}
