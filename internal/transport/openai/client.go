package openai

import (
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultTimeout bounds a single provider request when none is configured.
const DefaultTimeout = 30 * time.Second

// newClient builds an OpenAI-compatible client whose HTTP transport gives up after timeout.
func newClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(clientCfg)
}

func orDefaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}
