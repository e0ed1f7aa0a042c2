package orchestrator

import (
	"net/http"
	"sync"

	"github.com/scenecraft/scenecraft/pkg/genai/gemini"
)

// clientCache keeps at most one provider client, keyed by credential, so the
// server-level client is not reconstructed on every request. It is replaced
// whenever the credential changes. Caller-supplied credentials bypass it
// entirely; those always get a fresh, request-scoped client.
type clientCache struct {
	mu        sync.Mutex
	key       string
	client    *gemini.Client
	baseURL   string
	transport *http.Client
}

func newClientCache(baseURL string, transport *http.Client) *clientCache {
	return &clientCache{baseURL: baseURL, transport: transport}
}

func (c *clientCache) get(apiKey string) *gemini.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil || c.key != apiKey {
		c.key = apiKey
		c.client = gemini.NewClient(&gemini.ClientOptions{
			BaseURL:   c.baseURL,
			ApiKey:    apiKey,
			Transport: c.transport,
		})
	}

	return c.client
}
