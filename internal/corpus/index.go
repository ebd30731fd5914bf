// Package corpus holds the in-memory index of the currently loaded document.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/domain/chunk"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/similarity"
)

// DefaultConcurrency is the number of embedding calls in flight during a load.
const DefaultConcurrency = 4

// Options tunes how a load talks to the embedding service.
type Options struct {
	// Concurrency bounds in-flight embedding requests (default DefaultConcurrency).
	Concurrency int
	// BatchSize > 1 groups chunks into one request when the embedder supports batching.
	BatchSize int
}

// Snapshot describes the corpus currently held by an Index.
type Snapshot struct {
	ID        string
	Source    string
	Chunks    int
	Dimension int
	Tokens    int
	LoadedAt  time.Time
}

// Empty reports whether no chunks are loaded.
func (s Snapshot) Empty() bool { return s.Chunks == 0 }

// Match is the best chunk for a query. Text is "" when the corpus is empty.
type Match struct {
	Text     string
	Score    float64
	Position int
}

// Index is an ordered, wholesale-replaced collection of indexed chunks.
// Load builds the new corpus aside and swaps it in under the lock, so a failed
// load leaves the previous corpus untouched.
type Index struct {
	mu       sync.RWMutex
	chunks   []chunk.Indexed
	snapshot Snapshot

	concurrency int
	batchSize   int
	logger      *zap.Logger
}

// New creates an empty Index.
func New(opts Options, logger *zap.Logger) *Index {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		concurrency: opts.Concurrency,
		batchSize:   opts.BatchSize,
		logger:      logger,
	}
}

// Load embeds texts and replaces the whole corpus with the result, preserving order.
// Texts that are empty after trimming are discarded. Any embedding failure rejects the load.
func (ix *Index) Load(
	ctx context.Context, source string, texts []string, embedder domain.Embedder,
) (Snapshot, error) {
	kept := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			kept = append(kept, t)
		}
	}

	start := time.Now()

	vectors, tokens, err := ix.embedAll(ctx, kept, embedder)
	if err != nil {
		return Snapshot{}, err
	}

	indexed, dim, err := assemble(kept, vectors)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		ID:        uuid.NewString(),
		Source:    source,
		Chunks:    len(indexed),
		Dimension: dim,
		Tokens:    tokens,
		LoadedAt:  time.Now().UTC(),
	}

	ix.mu.Lock()
	ix.chunks = indexed
	ix.snapshot = snap
	ix.mu.Unlock()

	ix.logger.Info("Corpus replaced",
		zap.String("corpus_id", snap.ID),
		zap.String("source", source),
		zap.Int("chunks", snap.Chunks),
		zap.Int("dimension", dim),
		zap.Int("tokens", tokens),
		zap.Duration("duration", time.Since(start)),
	)

	return snap, nil
}

// Retrieve returns the chunk most similar to query. Ties go to the earliest chunk.
func (ix *Index) Retrieve(query []float32) (Match, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.chunks) == 0 {
		return Match{}, nil
	}

	best := Match{Position: -1}
	for i := range ix.chunks {
		score, err := similarity.Cosine(query, ix.chunks[i].Vector())
		if err != nil {
			ix.logger.Error("Query vector does not match corpus dimension",
				zap.String("corpus_id", ix.snapshot.ID),
				zap.Int("corpus_dimension", ix.snapshot.Dimension),
				zap.Int("query_dimension", len(query)),
			)
			return Match{}, fmt.Errorf("score chunk %d: %w", i, err)
		}
		if best.Position < 0 || score > best.Score {
			best = Match{Text: ix.chunks[i].Text(), Score: score, Position: i}
		}
	}
	return best, nil
}

// Len returns the number of loaded chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Snapshot returns metadata about the loaded corpus.
func (ix *Index) Snapshot() Snapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.snapshot
}

// embedAll fans out embedding requests and writes each vector back at its chunk position.
func (ix *Index) embedAll(
	ctx context.Context, texts []string, embedder domain.Embedder,
) ([][]float32, int, error) {
	vectors := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vectors, 0, nil
	}

	step := 1
	batcher, canBatch := embedder.(domain.BatchEmbedder)
	if canBatch && ix.batchSize > 1 {
		step = ix.batchSize
	}

	var (
		mu     sync.Mutex
		tokens int
	)
	addTokens := func(n int) {
		mu.Lock()
		tokens += n
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.concurrency)

	for offset := 0; offset < len(texts); offset += step {
		offset := offset
		end := min(offset+step, len(texts))

		g.Go(func() error {
			if step == 1 {
				res, err := embedder.Embed(gctx, texts[offset])
				if err != nil {
					return fmt.Errorf("embed chunk %d: %w", offset, err)
				}
				vectors[offset] = res.Embedding
				addTokens(res.TotalTokens)
				return nil
			}

			res, err := batcher.BatchEmbed(gctx, texts[offset:end])
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", offset, end-1, err)
			}
			if len(res.Embeddings) != end-offset {
				return fmt.Errorf("embed chunks %d-%d: got %d vectors: %w",
					offset, end-1, len(res.Embeddings), domain.ErrEmbeddingService)
			}
			copy(vectors[offset:end], res.Embeddings)
			addTokens(res.TotalTokens)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if !errors.Is(err, domain.ErrEmbeddingService) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
		}
		return nil, 0, err
	}
	return vectors, tokens, nil
}

// assemble pairs texts with vectors and enforces a single non-zero dimension.
func assemble(texts []string, vectors [][]float32) ([]chunk.Indexed, int, error) {
	indexed := make([]chunk.Indexed, 0, len(texts))
	dim := 0
	for i := range texts {
		v := vectors[i]
		if len(v) == 0 {
			return nil, 0, fmt.Errorf("chunk %d: empty embedding: %w", i, domain.ErrEmbeddingService)
		}
		if dim == 0 {
			dim = len(v)
		} else if len(v) != dim {
			return nil, 0, fmt.Errorf("chunk %d: %w", i, domain.NewDimensionMismatch(dim, len(v)))
		}
		c, err := chunk.New(texts[i], v)
		if err != nil {
			return nil, 0, fmt.Errorf("chunk %d: %w", i, err)
		}
		indexed = append(indexed, c)
	}
	return indexed, dim, nil
}
