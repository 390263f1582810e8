// Package storage arquiva documentos fiscais binários num object storage
// gerenciado, expondo a URL pública estável de cada objeto.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/seu-usuario/pdv-fiscal/pkg/logger"
)

// HTTPClient permite injetar *http.Client real ou um fake nos testes.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// BucketClient grava objetos via API HTTP do storage (upsert habilitado, já
// que reemissões geram nomes distintos mas o caminho pode colidir em retries
// dentro do mesmo segundo).
type BucketClient struct {
	baseURL    string
	bucket     string
	serviceKey string
	httpClient HTTPClient
	log        *logger.Logger
}

// NewBucketClient constrói o cliente do bucket de documentos fiscais.
func NewBucketClient(baseURL, bucket, serviceKey string, httpClient HTTPClient, log *logger.Logger) *BucketClient {
	return &BucketClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		httpClient: httpClient,
		log:        log,
	}
}

// Upload envia o conteúdo para o bucket e devolve a URL pública do objeto.
func (c *BucketClient) Upload(ctx context.Context, path string, content []byte, contentType string) (string, error) {
	if c.baseURL == "" || c.serviceKey == "" {
		return "", fmt.Errorf("storage: URL ou chave de serviço não configuradas")
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("storage: criar request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: upload falhou: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return "", fmt.Errorf("storage: upload devolveu status %d: %s", resp.StatusCode, string(body))
	}

	return c.PublicURL(path), nil
}

// PublicURL devolve a URL pública estável de um objeto do bucket.
func (c *BucketClient) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, path)
}
