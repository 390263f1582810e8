package nfce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
	"github.com/seu-usuario/pdv-fiscal/pkg/logger"
)

// Status de negócio devolvidos pelo gateway que contam como falha.
const (
	statusRejeitado = "rejeitado"
	statusErro      = "erro"
)

// ── Porta (interface) ─────────────────────────────────────────────────────────

// NotaResumo identificadores e artefatos de uma nota existente no gateway.
type NotaResumo struct {
	ID        string
	Chave     string
	Status    string
	XMLURL    string
	PDFURL    string
	QRCodeURL string
}

// Resultado união etiquetada da resposta do gateway, decodificada uma única
// vez em classificar(): ou a operação teve sucesso (Nota preenchida), ou foi
// rejeitada (Motivo preenchido; ChaveDuplicada quando o motivo casa com a
// assinatura de duplicidade).
type Resultado struct {
	Sucesso        bool
	Nota           *NotaResumo
	Motivo         string
	ChaveDuplicada string
}

// Gateway define a porta de saída para o gateway de emissão NFC-e.
// A implementação concreta usa HTTP/JSON; para testes injeta-se um fake.
type Gateway interface {
	// Emitir submete o documento. O ambiente vem do próprio documento.
	Emitir(ctx context.Context, token string, doc *Documento) (*Resultado, error)
	// ConsultarPorChave busca notas já emitidas pela chave de acesso,
	// CNPJ do emitente e ambiente (caminho de recuperação de duplicidade).
	ConsultarPorChave(ctx context.Context, token, chave, cpfCnpj, ambiente string) ([]NotaResumo, error)
	// BaixarPDF busca a representação binária (PDF) da nota autorizada.
	BaixarPDF(ctx context.Context, token, id, ambiente string) ([]byte, error)
	// Cancelar solicita o cancelamento de uma nota autorizada.
	Cancelar(ctx context.Context, token, id, justificativa, ambiente string) (*Resultado, error)
}

// ── Implementação HTTP ────────────────────────────────────────────────────────

// Client implementa Gateway sobre a API REST do provedor fiscal.
// Cada operação é uma única ida e volta HTTP, sem retry e sem timeout próprio
// (vale o deadline da requisição da plataforma).
type Client struct {
	prodURL    string
	sandboxURL string
	httpClient HTTPClient
	log        *logger.Logger
}

// NewClient constrói o cliente com as duas bases de URL; a escolha entre elas
// acontece por chamada, segundo o ambiente do emitente.
func NewClient(prodURL, sandboxURL string, httpClient HTTPClient, log *logger.Logger) *Client {
	return &Client{
		prodURL:    strings.TrimRight(prodURL, "/"),
		sandboxURL: strings.TrimRight(sandboxURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

func (c *Client) baseURL(ambiente string) string {
	if ambiente == entity.AmbienteProducao {
		return c.prodURL
	}
	return c.sandboxURL
}

// Emitir envia POST /nfce e classifica a resposta.
func (c *Client) Emitir(ctx context.Context, token string, doc *Documento) (*Resultado, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("nfce: serializar documento: %w", err)
	}
	status, body, err := c.do(ctx, http.MethodPost, c.baseURL(doc.Ambiente)+"/nfce", token, payload)
	if err != nil {
		return nil, err
	}
	return classificar(status, body), nil
}

// ConsultarPorChave envia GET /nfce?chave=&cpf_cnpj=&ambiente=.
func (c *Client) ConsultarPorChave(ctx context.Context, token, chave, cpfCnpj, ambiente string) ([]NotaResumo, error) {
	q := url.Values{}
	q.Set("chave", chave)
	q.Set("cpf_cnpj", cpfCnpj)
	q.Set("ambiente", ambiente)

	status, body, err := c.do(ctx, http.MethodGet, c.baseURL(ambiente)+"/nfce?"+q.Encode(), token, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("nfce: consulta por chave devolveu status %d: %s", status, string(body))
	}

	var lista struct {
		Data []notaResponse `json:"data"`
	}
	if err := decodeJSON(body, &lista); err != nil {
		return nil, fmt.Errorf("nfce: decodificar consulta: %w", err)
	}
	notas := make([]NotaResumo, 0, len(lista.Data))
	for _, n := range lista.Data {
		notas = append(notas, n.resumo())
	}
	return notas, nil
}

// BaixarPDF envia GET /nfce/{id}/pdf e devolve o binário.
func (c *Client) BaixarPDF(ctx context.Context, token, id, ambiente string) ([]byte, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.baseURL(ambiente)+"/nfce/"+id+"/pdf", token, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("nfce: download do PDF devolveu status %d", status)
	}
	return body, nil
}

// Cancelar envia POST /nfce/{id}/cancelamento com a justificativa.
func (c *Client) Cancelar(ctx context.Context, token, id, justificativa, ambiente string) (*Resultado, error) {
	payload, err := json.Marshal(map[string]string{"justificativa": justificativa})
	if err != nil {
		return nil, fmt.Errorf("nfce: serializar cancelamento: %w", err)
	}
	status, body, err := c.do(ctx, http.MethodPost, c.baseURL(ambiente)+"/nfce/"+id+"/cancelamento", token, payload)
	if err != nil {
		return nil, err
	}
	return classificar(status, body), nil
}

func (c *Client) do(ctx context.Context, method, url, token string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("nfce: criar request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("nfce: chamada HTTP falhou: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20)) // PDFs cabem em 8 MB
	if err != nil {
		return 0, nil, fmt.Errorf("nfce: ler resposta: %w", err)
	}
	return resp.StatusCode, body, nil
}

// ── Classificação da resposta ─────────────────────────────────────────────────

// notaResponse forma dinâmica devolvida pelo gateway; os campos presentes
// variam entre sucesso, erro e consulta.
type notaResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	ChaveAcesso string `json:"chave_acesso"`
	XMLURL      string `json:"caminho_xml"`
	PDFURL      string `json:"caminho_danfe"`
	QRCodeURL   string `json:"qrcode_url"`
	Motivo      string `json:"motivo"`
	Mensagem    string `json:"mensagem"`
	Erro        *struct {
		Mensagem string `json:"mensagem"`
	} `json:"erro"`
}

func (n notaResponse) resumo() NotaResumo {
	return NotaResumo{
		ID:        n.ID,
		Chave:     n.ChaveAcesso,
		Status:    n.Status,
		XMLURL:    n.XMLURL,
		PDFURL:    n.PDFURL,
		QRCodeURL: n.QRCodeURL,
	}
}

// classificar decide o desfecho: sucesso HTTP E status de negócio fora de
// {rejeitado, erro} ⇒ sucesso; qualquer outra coisa ⇒ rejeição com motivo
// extraído dos campos aninhados (corpo não-JSON vira o próprio motivo).
func classificar(status int, body []byte) *Resultado {
	var resp notaResponse
	if err := decodeJSON(body, &resp); err != nil {
		return &Resultado{Motivo: strings.TrimSpace(string(body))}
	}

	httpOK := status >= 200 && status < 300
	negocio := strings.ToLower(resp.Status)
	if httpOK && negocio != statusRejeitado && negocio != statusErro {
		nota := resp.resumo()
		return &Resultado{Sucesso: true, Nota: &nota}
	}

	motivo := resp.Motivo
	if motivo == "" {
		motivo = resp.Mensagem
	}
	if motivo == "" && resp.Erro != nil {
		motivo = resp.Erro.Mensagem
	}
	if motivo == "" {
		motivo = strings.TrimSpace(string(body))
	}

	res := &Resultado{Motivo: motivo}
	if EhDuplicidade(motivo) {
		if chave, ok := ExtrairChaveDuplicada(motivo); ok {
			res.ChaveDuplicada = chave
		}
	}
	return res
}

func decodeJSON(body []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	return dec.Decode(v)
}
