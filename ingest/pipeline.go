package ingest

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/embedding"
	"github.com/poiesic/modelkit/vectorstore"
)

const defaultBatchSize = 16

// Pipeline embeds documents and writes them to a vector store.
// Batches are processed concurrently over a worker pool.
type Pipeline struct {
	store     vectorstore.Store
	embedder  embedding.Embedder
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent batch embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of documents embedded per provider
// call. Default is 16.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(store vectorstore.Store, embedder embedding.Embedder, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:     store,
		embedder:  embedder,
		pool:      pool,
		batchSize: defaultBatchSize,
		logger:    slog.Default().With("component", "ingest"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	return p, nil
}

// Ingest embeds the documents and writes them to the store. Documents
// that already carry a vector are written as-is. Content is embedded in
// batches submitted to the worker pool; Ingest blocks until every batch
// has been stored and returns the first error encountered.
func (p *Pipeline) Ingest(ctx context.Context, docs []core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for start := 0; start < len(docs); start += p.batchSize {
		end := min(start+p.batchSize, len(docs))
		batch := docs[start:end]

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.ingestBatch(ctx, batch); err != nil {
				p.logger.Error("error ingesting batch", "size", len(batch), "err", err)
				record(err)
			}
		})
		if submitErr != nil {
			wg.Done()
			record(submitErr)
			break
		}
	}

	wg.Wait()
	return errors.Join(errs...)
}

func (p *Pipeline) ingestBatch(ctx context.Context, docs []core.Document) error {
	// Work on a copy so the caller's documents are never mutated
	docs = slices.Clone(docs)

	// Embed only documents without a vector
	texts := make([]string, 0, len(docs))
	missing := make([]int, 0, len(docs))
	for i, doc := range docs {
		if len(doc.Vector) == 0 {
			texts = append(texts, doc.Content)
			missing = append(missing, i)
		}
	}

	if len(texts) > 0 {
		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(texts) {
			return core.NonTransientf("embedding result mismatch. expected %d, received %d", len(texts), len(vectors))
		}
		for j, i := range missing {
			docs[i].Vector = vectorstore.Normalize(vectors[j])
		}
	}

	return p.store.Add(ctx, docs)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
