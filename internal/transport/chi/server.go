package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
	logpkg "github.com/Momo3972/chatbot-rag-ia-gen/internal/logger"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/present"
	healthuc "github.com/Momo3972/chatbot-rag-ia-gen/internal/usecase/health"
	sessionuc "github.com/Momo3972/chatbot-rag-ia-gen/internal/usecase/session"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/version"
)

const (
	// DefaultMaxPDFBytes caps an uploaded PDF when no limit is configured.
	DefaultMaxPDFBytes = 32 << 20
	maxJSONBodyBytes   = 1 << 20
	multipartMemory    = 8 << 20
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest        = "bad_request"
	codePayloadTooLarge   = "payload_too_large"
	codeExtractionFailed  = "extraction_failed"
	codeEmbeddingProvider = "embedding_provider_error"
	codeDimensionMismatch = "vector_dimension_mismatch"
	codeInternal          = "internal_error"
)

// Session is the chat session the HTTP API drives.
type Session interface {
	LoadFromPDF(ctx context.Context, path string) (sessionuc.LoadReport, error)
	LoadFromURL(ctx context.Context, url string) (sessionuc.LoadReport, error)
	Ask(ctx context.Context, query string) (string, error)
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a load error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the load, ask, health and metrics endpoints.
type Server struct {
	session       Session
	health        HealthReporter
	logger        *zap.Logger
	maxPDFBytes   int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxPDFBytes <= 0 uses DefaultMaxPDFBytes.
func NewServer(session Session, health HealthReporter, maxPDFBytes int64, logger *zap.Logger) *Server {
	if maxPDFBytes <= 0 {
		maxPDFBytes = DefaultMaxPDFBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		session:     session,
		health:      health,
		logger:      logger,
		maxPDFBytes: maxPDFBytes,
	}
	// Order matters: an invalid URL is reported as an extraction failure.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrExtraction, http.StatusUnprocessableEntity, codeExtractionFailed),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrEmbeddingService, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusInternalServerError, codeDimensionMismatch),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/load/pdf", s.LoadPDF)
	r.Post("/load/url", s.LoadURL)
	r.Post("/ask", s.Ask)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type loadURLRequest struct {
	URL string `json:"url"`
}

type askRequest struct {
	Query string `json:"query"`
}

type loadResponse struct {
	Status   string `json:"status"`
	Chunks   int    `json:"chunks"`
	CorpusID string `json:"corpus_id"`
	Source   string `json:"source"`
}

type loadErrorResponse struct {
	Status string `json:"status"`
	Code   string `json:"code"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type corpusResponse struct {
	State  string `json:"state"`
	ID     string `json:"id,omitempty"`
	Source string `json:"source,omitempty"`
	Chunks int    `json:"chunks"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Corpus  corpusResponse    `json:"corpus"`
	Version string            `json:"version"`
}

// LoadPDF handles POST /load/pdf (multipart field "file").
func (s *Server) LoadPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxPDFBytes+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.writeBodyError(w, err, "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, `Multipart field "file" is required`)
		return
	}
	defer file.Close()

	if header.Size > s.maxPDFBytes {
		writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge,
			fmt.Sprintf("PDF exceeds %d bytes", s.maxPDFBytes))
		return
	}

	path, cleanup, err := saveTemp(file)
	if err != nil {
		logpkg.FromContext(r.Context()).Error("Failed to store upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}
	defer cleanup()

	ctx := logpkg.With(r.Context(), zap.String("filename", header.Filename))
	report, err := s.session.LoadFromPDF(ctx, path)
	if err != nil {
		s.handleLoadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loadResponse{
		Status:   present.PDFLoaded,
		Chunks:   report.Chunks,
		CorpusID: report.CorpusID,
		Source:   filepath.Base(header.Filename),
	})
}

// LoadURL handles POST /load/url.
func (s *Server) LoadURL(w http.ResponseWriter, r *http.Request) {
	var req loadURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeBodyError(w, err, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "url is required")
		return
	}

	report, err := s.session.LoadFromURL(r.Context(), req.URL)
	if err != nil {
		s.handleLoadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loadResponse{
		Status:   present.URLLoaded,
		Chunks:   report.Chunks,
		CorpusID: report.CorpusID,
		Source:   report.Source,
	})
}

// Ask handles POST /ask. Every outcome of a well-formed request is a 200 with a displayable answer.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeBodyError(w, err, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	answer, err := s.session.Ask(ctx, req.Query)
	if err != nil {
		logpkg.FromContext(ctx).Warn("Ask failed", zap.Error(err))
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, askResponse{Answer: present.Answer(answer, err)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
		Corpus: corpusResponse{
			State:  string(report.Corpus.State),
			ID:     report.Corpus.ID,
			Source: report.Corpus.Source,
			Chunks: report.Corpus.Chunks,
		},
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleLoadError(w http.ResponseWriter, err error) {
	s.logger.Warn("load failed", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, loadErrorResponse{
		Status: present.LoadFailed(errors.New("internal error")),
		Code:   codeInternal,
	})
}

// writeBodyError reports an unreadable request body, distinguishing oversized ones.
func (s *Server) writeBodyError(w http.ResponseWriter, err error, msg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	writeError(w, http.StatusBadRequest, codeBadRequest, msg+": "+err.Error())
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeJSON(w, status, loadErrorResponse{Status: present.LoadFailed(err), Code: code})
		return true
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// saveTemp copies an upload to a temporary file the PDF reader can seek in.
func saveTemp(src io.Reader) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "ragchat-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup = func() { _ = os.Remove(f.Name()) }

	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.TokenUsage) {
	if n := usage.EmbeddingTokens(); n > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(n))
	}
	if n := usage.CompletionTokens(); n > 0 {
		w.Header().Set("X-Completion-Tokens", strconv.Itoa(n))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// requestTimeout bounds handler work when the client stays connected.
func requestTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
