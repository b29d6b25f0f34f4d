package vectorstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/vectorstore"
	"github.com/poiesic/modelkit/vectorstore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (e *stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	return e.vector, e.err
}

func (e *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = e.vector
	}
	return out, e.err
}

func TestNewSearcher_RequiresStore(t *testing.T) {
	_, err := vectorstore.NewSearcher(nil, &stubEmbedder{})
	assert.ErrorIs(t, err, vectorstore.ErrStoreRequired)
}

func TestNewSearcher_RequiresEmbedder(t *testing.T) {
	_, err := vectorstore.NewSearcher(memory.New(), nil)
	assert.ErrorIs(t, err, vectorstore.ErrEmbedderRequired)
}

func TestSearcherFindSimilar(t *testing.T) {
	store := memory.New()
	err := store.Add(context.Background(), []core.Document{
		{ID: "close", Content: "about cats", Vector: []float32{1, 0}},
		{ID: "far", Content: "about trains", Vector: []float32{0, 1}},
	})
	require.NoError(t, err)

	embedder := &stubEmbedder{vector: []float32{2, 0}}
	searcher, err := vectorstore.NewSearcher(store, embedder)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "cats", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "close", results[0].Document.ID)
	assert.Equal(t, 1, embedder.calls)
}

func TestSearcherSearch_EmbedderError(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("quota exhausted")}
	searcher, err := vectorstore.NewSearcher(memory.New(), embedder)
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "query", vectorstore.SearchRequest{})
	assert.ErrorContains(t, err, "quota exhausted")
}

func TestSearcherSearch_AppliesFilter(t *testing.T) {
	store := memory.New()
	err := store.Add(context.Background(), []core.Document{
		{ID: "en", Vector: []float32{1, 0}, Metadata: map[string]any{"lang": "en"}},
		{ID: "fr", Vector: []float32{1, 0}, Metadata: map[string]any{"lang": "fr"}},
	})
	require.NoError(t, err)

	searcher, err := vectorstore.NewSearcher(store, &stubEmbedder{vector: []float32{1, 0}})
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "anything", vectorstore.SearchRequest{
		Filter: map[string]any{"lang": "en"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "en", results[0].Document.ID)
}
