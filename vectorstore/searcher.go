package vectorstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/modelkit/embedding"
)

var (
	// ErrStoreRequired indicates a Searcher constructed without a store.
	ErrStoreRequired = errors.New("store is required")

	// ErrEmbedderRequired indicates a Searcher constructed without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")
)

// Searcher composes an Embedder with a Store so callers can search by
// query text directly.
type Searcher struct {
	store    Store
	embedder embedding.Embedder
	logger   *slog.Logger
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) SearcherOption {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher over the given store.
func NewSearcher(store Store, embedder embedding.Embedder, opts ...SearcherOption) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		store:    store,
		embedder: embedder,
		logger:   slog.Default().With("component", "searcher"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search embeds the query text and runs a similarity search with the
// request's TopK, MinScore and Filter. The request's Vector field is
// ignored.
func (s *Searcher) Search(ctx context.Context, query string, req SearchRequest) ([]ScoredDocument, error) {
	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	req.Vector = Normalize(vector)
	results, err := s.store.Search(ctx, req)
	if err != nil {
		s.logger.Error("error querying for similar documents", "err", err)
		return nil, err
	}
	return results, nil
}

// FindSimilar embeds the query text and returns up to maxHits documents
// ranked by similarity.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]ScoredDocument, error) {
	return s.Search(ctx, query, SearchRequest{TopK: maxHits})
}
