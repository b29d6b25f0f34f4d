package vectorstore

import (
	"context"
	"errors"

	"github.com/poiesic/modelkit/core"
)

var (
	// ErrEmptyVector indicates a search request without a query vector.
	ErrEmptyVector = errors.New("search vector is empty")

	// ErrNotFound indicates a document id with no stored document.
	ErrNotFound = errors.New("document not found")
)

// SearchRequest describes a similarity query.
type SearchRequest struct {
	// Vector is the query embedding.
	Vector []float32

	// TopK caps the number of results. Zero or less means 4, matching
	// the common provider default.
	TopK int

	// MinScore drops results scoring below the threshold. Zero keeps
	// everything with non-negative similarity.
	MinScore float32

	// Filter restricts results to documents whose metadata contains
	// every listed key with an equal value. Nil matches all documents.
	Filter map[string]any
}

const defaultTopK = 4

// Limit returns the effective result cap.
func (r SearchRequest) Limit() int {
	if r.TopK > 0 {
		return r.TopK
	}
	return defaultTopK
}

// ScoredDocument is a search hit with its similarity score.
type ScoredDocument struct {
	Document core.Document
	Score    float32
}

// Store is the backend boundary for vector stores.
// Implementations must be safe for concurrent use.
type Store interface {
	// Add stores the documents. Every document must carry a vector;
	// a missing vector is a precondition failure. Existing ids are
	// overwritten.
	Add(ctx context.Context, docs []core.Document) error

	// Delete removes documents by id. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// Search returns up to TopK documents ranked by similarity,
	// highest first.
	Search(ctx context.Context, req SearchRequest) ([]ScoredDocument, error)

	// Close releases backend resources.
	Close() error
}

// ValidateDocuments checks that every document has an id and a vector
// before it reaches a backend.
func ValidateDocuments(docs []core.Document) error {
	for i, doc := range docs {
		if doc.ID == "" {
			return core.Preconditionf("document %d has no id", i)
		}
		if len(doc.Vector) == 0 {
			return core.Preconditionf("document %q: %w", doc.ID, core.ErrMissingVector)
		}
	}
	return nil
}

// MatchesFilter reports whether the document metadata satisfies the
// filter: every filter key present and equal.
func MatchesFilter(doc core.Document, filter map[string]any) bool {
	if len(filter) == 0 {
		return true
	}
	for key, want := range filter {
		got, ok := doc.Metadata[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}
