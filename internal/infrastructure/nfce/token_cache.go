package nfce

import (
	"sync"
	"time"
)

// tokenCache guarda o bearer token do gateway com TTL, seguro para uso
// concorrente. Evita uma troca OAuth por chamada dentro da mesma requisição.
type tokenCache struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

func (c *tokenCache) get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == "" || time.Now().After(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

func (c *tokenCache) set(token string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	c.expiresAt = time.Now().Add(ttl)
}

func (c *tokenCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	c.expiresAt = time.Time{}
}
