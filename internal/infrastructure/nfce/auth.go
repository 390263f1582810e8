package nfce

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/seu-usuario/pdv-fiscal/internal/domain"
	"github.com/seu-usuario/pdv-fiscal/pkg/logger"
)

// HTTPClient permite injetar *http.Client real ou um fake nos testes.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenProvider porta de obtenção do bearer token do gateway fiscal.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Authenticator troca client_credentials por um bearer token de curta duração
// no serviço de identidade do gateway (POST /oauth/token, form-encoded).
// Não há retry: falha de autenticação aborta a tentativa de emissão inteira.
type Authenticator struct {
	authURL      string
	clientID     string
	clientSecret string
	scope        string
	ttl          time.Duration
	cache        tokenCache
	client       HTTPClient
	log          *logger.Logger
	mu           sync.Mutex // serializa o refresh para não disparar trocas concorrentes
}

// NewAuthenticator constrói o autenticador. ttl limita o cache local do token;
// se o serviço devolver expires_in menor, vale o menor dos dois.
func NewAuthenticator(authURL, clientID, clientSecret, scope string, ttl time.Duration, client HTTPClient, log *logger.Logger) *Authenticator {
	return &Authenticator{
		authURL:      strings.TrimRight(authURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        scope,
		ttl:          ttl,
		client:       client,
		log:          log,
	}
}

// Token devolve um bearer token válido, renovando quando necessário.
// Credenciais ausentes falham antes de qualquer chamada de rede.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	if a.clientID == "" || a.clientSecret == "" {
		return "", domain.ErrMissingCredentials
	}
	if token, ok := a.cache.get(); ok {
		return token, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check: outra goroutine pode ter renovado enquanto esperávamos.
	if token, ok := a.cache.get(); ok {
		return token, nil
	}

	token, ttl, err := a.exchange(ctx)
	if err != nil {
		return "", err
	}
	a.cache.set(token, ttl)
	a.log.Debug().Dur("ttl", ttl).Msg("token do gateway fiscal renovado")
	return token, nil
}

// tokenResponse corpo devolvido pelo serviço de identidade.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (a *Authenticator) exchange(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.clientID)
	form.Set("client_secret", a.clientSecret)
	form.Set("scope", a.scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.authURL+"/oauth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, &domain.AuthenticationError{Body: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", 0, &domain.AuthenticationError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// O corpo cru vai no erro para diagnóstico (credencial revogada,
		// escopo inválido, etc.).
		return "", 0, &domain.AuthenticationError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := decodeJSON(body, &tr); err != nil || tr.AccessToken == "" {
		return "", 0, &domain.AuthenticationError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	ttl := a.ttl
	if tr.ExpiresIn > 0 {
		if respTTL := time.Duration(tr.ExpiresIn) * time.Second; respTTL < ttl {
			ttl = respTTL
		}
	}
	return tr.AccessToken, ttl, nil
}

// ClearToken descarta o token em cache, forçando nova troca na próxima chamada.
func (a *Authenticator) ClearToken() {
	a.cache.clear()
}
