package openai

import (
	"context"
	"fmt"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/metrics"
)

const opEmbedding = "embedding"

// Embedder is an embedding provider using the OpenAI-compatible API.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	timeout    time.Duration
	logger     *zap.Logger
}

// EmbedderConfig holds the embedding provider settings.
type EmbedderConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *EmbedderConfig) *Embedder {
	timeout := orDefaultTimeout(cfg.Timeout)
	model := cfg.Model
	if model == "" {
		model = domain.DefaultEmbeddingModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:     newClient(cfg.APIKey, cfg.BaseURL, timeout),
		model:      openai.EmbeddingModel(model),
		dimensions: cfg.Dimensions,
		timeout:    timeout,
		logger:     logger,
	}
}

// Embed implements domain.Embedder. One request, no retries.
// Errors wrap domain.ErrEmbeddingService.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	resp, err := e.create(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		e.recordError("empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingService)
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// BatchEmbed implements domain.BatchEmbedder. Vectors are reordered by the response index.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	resp, err := e.create(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	if len(resp.Data) != len(texts) {
		e.recordError("count_mismatch")
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"expected %d embeddings, got %d: %w", len(texts), len(resp.Data), domain.ErrEmbeddingService,
		)
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	embeddings := make([][]float32, len(texts))
	for i, d := range data {
		if d.Index != i || len(d.Embedding) == 0 {
			e.recordError("malformed_response")
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"malformed embedding at index %d: %w", d.Index, domain.ErrEmbeddingService,
			)
		}
		embeddings[i] = d.Embedding
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, e.client, e.timeout)
}

func (e *Embedder) create(ctx context.Context, input []string) (openai.EmbeddingResponse, error) {
	req := openai.EmbeddingRequest{
		Input:          input,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	model := string(e.model)
	start := time.Now()

	resp, err := e.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(opEmbedding, model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opEmbedding, model, errorType(err)).Inc()
		e.logger.Warn("Embedding request failed",
			zap.String("model", model),
			zap.Int("inputs", len(input)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return openai.EmbeddingResponse{}, parseAPIError(opEmbedding, err, domain.ErrEmbeddingService)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(opEmbedding, model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(opEmbedding, model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.ProviderTokensTotal.WithLabelValues(opEmbedding, model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ProviderTokensTotal.WithLabelValues(opEmbedding, model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	e.logger.Debug("Embedding request completed",
		zap.String("model", model),
		zap.Int("inputs", len(input)),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return resp, nil
}

func (e *Embedder) recordError(kind string) {
	model := string(e.model)
	metrics.ProviderRequestsTotal.WithLabelValues(opEmbedding, model, "error").Inc()
	metrics.ProviderErrorsTotal.WithLabelValues(opEmbedding, model, kind).Inc()
}

func healthCheck(ctx context.Context, client *openai.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
