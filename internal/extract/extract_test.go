package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
)

func TestWeb_ExtractVisibleText(t *testing.T) {
	const page = `<!DOCTYPE html>
<html>
<head>
  <title> Refund policy </title>
  <style>body { color: red; }</style>
  <script>var secret = "do not index";</script>
</head>
<body>
  <h1>Refunds</h1>
  <p>Refunds are issued within <b>14 days</b>.</p>
  <!-- hidden comment -->
  <noscript>Enable JavaScript</noscript>
  <template><p>template body</p></template>
  <p>   </p>
  <p>Fish &amp; chips</p>
</body>
</html>`

	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	w := NewWeb(WebConfig{UserAgent: "test-agent"})
	text, err := w.Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := "Refund policy Refunds Refunds are issued within 14 days . Fish & chips"
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}
	if gotUA != "test-agent" {
		t.Errorf("expected user agent test-agent, got %q", gotUA)
	}
}

func TestWeb_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewWeb(WebConfig{}).Extract(context.Background(), server.URL)
	if !errors.Is(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	var extErr *domain.ExtractionError
	if !errors.As(err, &extErr) || extErr.Source != server.URL {
		t.Errorf("expected ExtractionError for %s, got %v", server.URL, err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status in error, got %q", err.Error())
	}
}

func TestWeb_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://example.com/file", "/relative/path"} {
		t.Run(raw, func(t *testing.T) {
			_, err := NewWeb(WebConfig{}).Extract(context.Background(), raw)
			if !errors.Is(err, domain.ErrExtraction) {
				t.Fatalf("expected ErrExtraction, got %v", err)
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput cause, got %v", err)
			}
		})
	}
}

func TestWeb_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<p>" + strings.Repeat("a", 200) + "</p>"))
	}))
	defer server.Close()

	_, err := NewWeb(WebConfig{MaxBodyBytes: 64}).Extract(context.Background(), server.URL)
	if !errors.Is(err, errBodyTooLarge) {
		t.Fatalf("expected errBodyTooLarge, got %v", err)
	}
}

func TestWeb_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><script>x()</script></body></html>"))
	}))
	defer server.Close()

	text, err := NewWeb(WebConfig{}).Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestPDF_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.pdf")

	_, err := NewPDF().Extract(context.Background(), path)
	if !errors.Is(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestPDF_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(path, []byte("just some text, not a PDF"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewPDF().Extract(context.Background(), path)
	if !errors.Is(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}
