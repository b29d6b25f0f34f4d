// Package memory provides an in-process vector store for tests and
// small corpora.
package memory

import (
	"context"
	"sync"

	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/vectorstore"
)

// Store keeps documents in a map guarded by a RWMutex.
type Store struct {
	mu   sync.RWMutex
	docs map[string]core.Document
}

var _ vectorstore.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{docs: make(map[string]core.Document)}
}

// Add stores the documents, overwriting existing ids.
func (s *Store) Add(ctx context.Context, docs []core.Document) error {
	if err := vectorstore.ValidateDocuments(docs); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		s.docs[doc.ID] = doc
	}
	return nil
}

// Delete removes documents by id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.docs, id)
	}
	return nil
}

// Search scans every stored document and ranks by cosine similarity.
func (s *Store) Search(ctx context.Context, req vectorstore.SearchRequest) ([]vectorstore.ScoredDocument, error) {
	if len(req.Vector) == 0 {
		return nil, core.Precondition(vectorstore.ErrEmptyVector)
	}

	s.mu.RLock()
	hits := make([]vectorstore.ScoredDocument, 0, len(s.docs))
	for _, doc := range s.docs {
		if !vectorstore.MatchesFilter(doc, req.Filter) {
			continue
		}
		hits = append(hits, vectorstore.ScoredDocument{
			Document: doc,
			Score:    vectorstore.CosineSimilarity(req.Vector, doc.Vector),
		})
	}
	s.mu.RUnlock()

	return vectorstore.Rank(req, hits), nil
}

// Len reports the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
