package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/metrics"
)

const opCompletion = "completion"

// Completer is a chat completion provider using the OpenAI-compatible API.
type Completer struct {
	client  *openai.Client
	timeout time.Duration
	logger  *zap.Logger
}

// CompleterConfig holds the completion provider settings.
type CompleterConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewCompleter creates an OpenAI-compatible chat completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	timeout := orDefaultTimeout(cfg.Timeout)
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Completer{
		client:  newClient(cfg.APIKey, cfg.BaseURL, timeout),
		timeout: timeout,
		logger:  logger,
	}
}

// Complete implements domain.Completer. One request, no retries.
// Errors wrap domain.ErrCompletionService.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})

	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(opCompletion, req.Model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opCompletion, req.Model, errorType(err)).Inc()
		c.logger.Warn("Completion request failed",
			zap.String("model", req.Model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.CompletionResult{}, parseAPIError(opCompletion, err, domain.ErrCompletionService)
	}

	if len(resp.Choices) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(opCompletion, req.Model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opCompletion, req.Model, "empty_response").Inc()
		return domain.CompletionResult{}, fmt.Errorf("completion returned no choices: %w", domain.ErrCompletionService)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(opCompletion, req.Model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(opCompletion, req.Model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.ProviderTokensTotal.WithLabelValues(opCompletion, req.Model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ProviderTokensTotal.WithLabelValues(opCompletion, req.Model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	c.logger.Debug("Completion request completed",
		zap.String("model", req.Model),
		zap.Duration("duration", duration),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return domain.CompletionResult{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Completer) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, c.client, c.timeout)
}
