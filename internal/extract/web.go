package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
)

// Web fetch defaults.
const (
	DefaultHTTPTimeout  = 15 * time.Second
	DefaultMaxBodyBytes = 10 << 20
	DefaultUserAgent    = "ragchat/1.0"
)

var errBodyTooLarge = errors.New("response body too large")

// WebConfig tunes page fetching.
type WebConfig struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
	// Client overrides the HTTP client (tests). Timeout is ignored when set.
	Client *http.Client
}

// Web fetches an HTML page and returns its visible text.
type Web struct {
	client       *http.Client
	maxBodyBytes int64
	userAgent    string
}

// NewWeb creates a web page extractor.
func NewWeb(cfg WebConfig) *Web {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHTTPTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Web{client: client, maxBodyBytes: cfg.MaxBodyBytes, userAgent: cfg.UserAgent}
}

// Extract GETs rawURL and returns all non-empty trimmed text nodes joined by one space.
// Failures are *domain.ExtractionError values.
func (w *Web) Extract(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fail(rawURL, fmt.Errorf("%w: url must be absolute http(s)", domain.ErrInvalidInput))
	}

	body, err := w.fetch(ctx, u.String())
	if err != nil {
		return "", fail(rawURL, err)
	}
	defer body.Close()

	text, err := visibleText(io.LimitReader(body, w.maxBodyBytes+1), w.maxBodyBytes)
	if err != nil {
		return "", fail(rawURL, err)
	}
	return text, nil
}

func (w *Web) fetch(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

// visibleText tokenizes HTML and collects text outside script-like elements.
func visibleText(r io.Reader, limit int64) (string, error) {
	counter := &countingReader{r: r}
	z := html.NewTokenizer(counter)

	var parts []string
	skipDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if counter.n > limit {
				return "", errBodyTooLarge
			}
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("parse HTML: %w", err)
			}
			return strings.Join(parts, " "), nil
		case html.StartTagToken:
			if isHidden(z) {
				skipDepth++
			}
		case html.EndTagToken:
			if skipDepth > 0 && isHidden(z) {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if s := strings.TrimSpace(string(z.Text())); s != "" {
				parts = append(parts, s)
			}
		}
	}
}

func isHidden(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
