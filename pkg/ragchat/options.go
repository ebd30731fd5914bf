package ragchat

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey  string
	baseURL string

	embedder  Embedder
	completer Completer

	embeddingModel  string
	completionModel string
	maxTokens       int
	maxWords        int
	concurrency     int
	requestTimeout  time.Duration
	fetchTimeout    time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithAPIKey sets the OpenAI API key used by the built-in providers.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithBaseURL points the built-in providers at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithEmbedder replaces the built-in OpenAI embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithCompleter replaces the built-in OpenAI chat completion provider.
func WithCompleter(cp Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = cp
	})
}

// WithModels sets the embedding and completion models.
// Empty values keep the defaults (text-embedding-ada-002, gpt-3.5-turbo).
func WithModels(embedding, completion string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embeddingModel = embedding
		c.completionModel = completion
	})
}

// WithMaxTokens caps the length of generated answers. Default: 200.
func WithMaxTokens(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxTokens = n
	})
}

// WithMaxWords sets the chunk window size in words. Default: 500.
func WithMaxWords(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxWords = n
	})
}

// WithConcurrency bounds in-flight embedding requests during a load. Default: 4.
func WithConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithTimeouts sets the per-request provider timeout and the web page fetch timeout.
// Zero values keep the defaults (30s, 15s).
func WithTimeouts(request, fetch time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.requestTimeout = request
		c.fetchTimeout = fetch
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
