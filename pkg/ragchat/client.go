package ragchat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/answer"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/corpus"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/extract"
	openaiTransport "github.com/Momo3972/chatbot-rag-ia-gen/internal/transport/openai"
	healthuc "github.com/Momo3972/chatbot-rag-ia-gen/internal/usecase/health"
	sessionuc "github.com/Momo3972/chatbot-rag-ia-gen/internal/usecase/session"
)

// NoContentMessage is the answer to any question asked before a successful load.
const NoContentMessage = sessionuc.NoContentMessage

// Internal interfaces, swapped in tests.
type sessionUseCase interface {
	LoadFromPDF(ctx context.Context, path string) (sessionuc.LoadReport, error)
	LoadFromURL(ctx context.Context, url string) (sessionuc.LoadReport, error)
	Ask(ctx context.Context, query string) (string, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// LoadResult describes a successful load.
type LoadResult struct {
	CorpusID string
	Source   string
	Chunks   int
	Tokens   int
	Duration time.Duration
}

// Client is the ragchat entry point. It is safe for concurrent use; a load
// racing an ask answers from either the old or the new corpus.
type Client struct {
	session   sessionUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. Without WithEmbedder and WithCompleter an API key is required.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.apiKey == "" && (cfg.embedder == nil || cfg.completer == nil) {
		return nil, errors.New("ragchat: API key required (use WithAPIKey, or WithEmbedder and WithCompleter)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(cfg, obs), nil
}

func wireClient(cfg *clientConfig, obs *observer) *Client {
	logger := zap.NewNop()

	var (
		embedder       domain.Embedder
		completer      domain.Completer
		embedHealth    healthuc.ProviderChecker
		completeHealth healthuc.ProviderChecker
	)

	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	} else {
		base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:  cfg.apiKey,
			BaseURL: cfg.baseURL,
			Model:   cfg.embeddingModel,
			Timeout: cfg.requestTimeout,
			Logger:  logger,
		})
		embedder, embedHealth = base, base
	}

	if cfg.completer != nil {
		completer = &completerAdapter{inner: cfg.completer}
	} else {
		base := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
			APIKey:  cfg.apiKey,
			BaseURL: cfg.baseURL,
			Timeout: cfg.requestTimeout,
			Logger:  logger,
		})
		completer, completeHealth = base, base
	}

	index := corpus.New(corpus.Options{Concurrency: cfg.concurrency}, logger)

	session := sessionuc.New(sessionuc.Deps{
		Index:    index,
		PDF:      extract.NewPDF(),
		Web:      extract.NewWeb(extract.WebConfig{Timeout: cfg.fetchTimeout}),
		Embedder: embedder,
		Generator: answer.New(completer, answer.Options{
			Model:     cfg.completionModel,
			MaxTokens: cfg.maxTokens,
		}),
		MaxWords: cfg.maxWords,
		Logger:   logger,
	})

	return &Client{
		session:   session,
		healthSvc: healthuc.New(index, embedHealth, completeHealth),
		obs:       obs,
	}
}

// LoadPDF replaces the corpus with the text of the PDF at path.
// On failure the previous corpus stays in place.
func (c *Client) LoadPDF(ctx context.Context, path string) (res LoadResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("load_pdf", start, err, "chunks", res.Chunks) }()

	report, err := c.session.LoadFromPDF(ctx, path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("load pdf: %w", err)
	}
	return loadResult(report), nil
}

// LoadURL replaces the corpus with the visible text of the web page at url.
// On failure the previous corpus stays in place.
func (c *Client) LoadURL(ctx context.Context, url string) (res LoadResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("load_url", start, err, "chunks", res.Chunks) }()

	report, err := c.session.LoadFromURL(ctx, url)
	if err != nil {
		return LoadResult{}, fmt.Errorf("load url: %w", err)
	}
	return loadResult(report), nil
}

// Ask answers query from the current corpus. Before any load it returns
// NoContentMessage and a nil error.
func (c *Client) Ask(ctx context.Context, query string) (ans string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	ans, err = c.session.Ask(ctx, query)
	if err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}
	return ans, nil
}

func loadResult(r sessionuc.LoadReport) LoadResult {
	return LoadResult{
		CorpusID: r.CorpusID,
		Source:   r.Source,
		Chunks:   r.Chunks,
		Tokens:   r.Tokens,
		Duration: r.Duration,
	}
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// completerAdapter wraps public Completer to satisfy internal domain.Completer.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	msgs := make([]Message, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = Message{Role: string(m.Role), Content: m.Content}
	}
	r, err := a.inner.Complete(ctx, CompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("complete: %w", err)
	}
	return domain.CompletionResult{Text: r.Text, TotalTokens: r.TotalTokens}, nil
}
