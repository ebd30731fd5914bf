// Package session sequences extraction, chunking, embedding, retrieval and
// answer generation for one corpus.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/chunker"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/corpus"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/metrics"
)

// NoContentMessage is returned by Ask before any content has been loaded.
const NoContentMessage = "Please load content first (PDF or URL)."

// Kind names the type of source a load came from.
type Kind string

// Source kinds.
const (
	KindPDF Kind = "pdf"
	KindURL Kind = "url"
)

// LoadReport describes a successful load.
type LoadReport struct {
	Kind     Kind
	Source   string
	CorpusID string
	Chunks   int
	Tokens   int
	Duration time.Duration
}

// Deps are the collaborators of a Service.
type Deps struct {
	Index     Index
	PDF       Extractor
	Web       Extractor
	Embedder  domain.Embedder
	Generator Generator
	// MaxWords is the chunk window size (default domain.DefaultMaxWords).
	MaxWords int
	Logger   *zap.Logger
}

// Service is one chat session over a single, replaceable corpus.
type Service struct {
	index     Index
	pdf       Extractor
	web       Extractor
	embedder  domain.Embedder
	generator Generator
	maxWords  int
	logger    *zap.Logger
}

// New creates a session.
func New(deps Deps) *Service {
	if deps.MaxWords <= 0 {
		deps.MaxWords = domain.DefaultMaxWords
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{
		index:     deps.Index,
		pdf:       deps.PDF,
		web:       deps.Web,
		embedder:  deps.Embedder,
		generator: deps.Generator,
		maxWords:  deps.MaxWords,
		logger:    deps.Logger,
	}
}

// LoadFromPDF replaces the corpus with the content of the PDF at path.
func (s *Service) LoadFromPDF(ctx context.Context, path string) (LoadReport, error) {
	return s.load(ctx, KindPDF, s.pdf, path)
}

// LoadFromURL replaces the corpus with the visible text of the page at url.
func (s *Service) LoadFromURL(ctx context.Context, url string) (LoadReport, error) {
	return s.load(ctx, KindURL, s.web, url)
}

func (s *Service) load(ctx context.Context, kind Kind, extractor Extractor, source string) (LoadReport, error) {
	start := time.Now()
	log := s.logger.With(zap.String("kind", string(kind)), zap.String("source", source))

	report, err := s.doLoad(ctx, kind, extractor, source)
	if err != nil {
		metrics.CorpusLoadsTotal.WithLabelValues(string(kind), "error").Inc()
		log.Warn("Load failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return LoadReport{}, err
	}

	report.Duration = time.Since(start)
	metrics.CorpusLoadsTotal.WithLabelValues(string(kind), "success").Inc()
	metrics.CorpusChunks.Set(float64(report.Chunks))
	log.Info("Content loaded",
		zap.String("corpus_id", report.CorpusID),
		zap.Int("chunks", report.Chunks),
		zap.Int("tokens", report.Tokens),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Service) doLoad(ctx context.Context, kind Kind, extractor Extractor, source string) (LoadReport, error) {
	if strings.TrimSpace(source) == "" {
		return LoadReport{}, domain.NewExtractionError(source, fmt.Errorf("%w: empty %s source", domain.ErrInvalidInput, kind))
	}

	text, err := extractor.Extract(ctx, source)
	if err != nil {
		if !errors.Is(err, domain.ErrExtraction) {
			err = domain.NewExtractionError(source, err)
		}
		return LoadReport{}, err
	}

	chunks := chunker.Split(text, s.maxWords)

	snap, err := s.index.Load(ctx, source, chunks, s.embedder)
	if err != nil {
		return LoadReport{}, fmt.Errorf("load corpus: %w", err)
	}

	return LoadReport{
		Kind:     kind,
		Source:   source,
		CorpusID: snap.ID,
		Chunks:   snap.Chunks,
		Tokens:   snap.Tokens,
	}, nil
}

// Ask answers query from the best matching chunk of the current corpus.
// With no content loaded it returns NoContentMessage without any network call.
func (s *Service) Ask(ctx context.Context, query string) (string, error) {
	if s.index.Snapshot().Empty() {
		metrics.AsksTotal.WithLabelValues("no_content").Inc()
		return NoContentMessage, nil
	}

	answer, err := s.ask(ctx, query)
	if err != nil {
		metrics.AsksTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Ask failed", zap.Error(err))
		return "", err
	}
	metrics.AsksTotal.WithLabelValues("answered").Inc()
	return answer, nil
}

func (s *Service) ask(ctx context.Context, query string) (string, error) {
	res, err := s.embedder.Embed(ctx, query)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbeddingService) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
		}
		return "", fmt.Errorf("embed query: %w", err)
	}

	match, err := s.index.Retrieve(res.Embedding)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}
	if match.Text == "" {
		// A concurrent load replaced the corpus with an empty one.
		return NoContentMessage, nil
	}

	s.logger.Debug("Retrieved context",
		zap.Int("position", match.Position),
		zap.Float64("score", match.Score),
	)

	return s.generator.Generate(ctx, query, match.Text)
}

// Snapshot describes the corpus currently loaded.
func (s *Service) Snapshot() corpus.Snapshot {
	return s.index.Snapshot()
}
