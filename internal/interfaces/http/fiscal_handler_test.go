package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/seu-usuario/pdv-fiscal/internal/interfaces/http"
	"github.com/seu-usuario/pdv-fiscal/pkg/logger"
)

// Handler só com validação de entrada: estes caminhos retornam antes de tocar
// nos casos de uso.
func buildFiscalApp() *fiber.App {
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	h := apphttp.NewFiscalHandler(nil, nil, log)

	app := fiber.New()
	app.Post("/api/fiscal/nfce", h.Process)
	return app
}

func postNFCe(t *testing.T, app *fiber.App, payload string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/fiscal/nfce", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	_ = json.Unmarshal(body, &parsed)
	return resp, parsed
}

func TestProcess_CorpoInvalido(t *testing.T) {
	app := buildFiscalApp()
	resp, body := postNFCe(t, app, `{sale_id`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestProcess_SaleIDObrigatorio(t *testing.T) {
	app := buildFiscalApp()
	resp, body := postNFCe(t, app, `{"cpfNaNota":"12345678909"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "sale_id")
}

func TestProcess_ActionDesconhecida(t *testing.T) {
	app := buildFiscalApp()
	resp, body := postNFCe(t, app, `{"sale_id":"sale-1","action":"reenviar"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "reenviar")
}
