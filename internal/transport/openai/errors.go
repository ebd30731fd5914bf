package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"
)

// isTimeout reports whether err is a context deadline or a transport timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// errorType classifies err for the provider_errors_total metric.
func errorType(err error) string {
	if isTimeout(err) {
		return "timeout"
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return "rate_limited"
	}
	return "api_error"
}

// parseAPIError extracts a human-readable error from the API response and wraps it with sentinel.
func parseAPIError(op string, err error, sentinel error) error {
	if isTimeout(err) {
		return fmt.Errorf("%s request timed out: %w", op, sentinel)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("%s API error %d: %s: %w", op, reqErr.HTTPStatusCode, detail, sentinel)
		}
		return fmt.Errorf("%s API error %d: %s: %w", op, reqErr.HTTPStatusCode, string(reqErr.Body), sentinel)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, sentinel)
	}

	return fmt.Errorf("%s request failed: %v: %w", op, err, sentinel)
}

// extractDetail extracts the "detail" field some OpenAI-compatible gateways return.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
