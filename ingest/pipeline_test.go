package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/vectorstore"
	"github.com/poiesic/modelkit/vectorstore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	mu      sync.Mutex
	batches [][]string
	err     error
}

func (e *stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.batches = append(e.batches, texts)
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return out, nil
}

func newTestPipeline(t *testing.T, store vectorstore.Store, embedder *stubEmbedder, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(store, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func TestNewPipeline_RequiresStore(t *testing.T) {
	_, err := NewPipeline(nil, &stubEmbedder{})
	assert.ErrorIs(t, err, ErrStoreRequired)
}

func TestNewPipeline_RequiresEmbedder(t *testing.T) {
	_, err := NewPipeline(memory.New(), nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestIngest_EmbedsAndStores(t *testing.T) {
	store := memory.New()
	embedder := &stubEmbedder{}
	p := newTestPipeline(t, store, embedder)

	err := p.Ingest(context.Background(), []core.Document{
		{ID: "a", Content: "alpha"},
		{ID: "b", Content: "beta"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	// Stored vectors are normalized
	results, err := store.Search(context.Background(), vectorstore.SearchRequest{Vector: []float32{1, 0}, TopK: 10})
	require.NoError(t, err)
	for _, hit := range results {
		var magnitude float32
		for _, v := range hit.Document.Vector {
			magnitude += v * v
		}
		assert.InDelta(t, 1.0, magnitude, 0.0001)
	}
}

func TestIngest_RespectsBatchSize(t *testing.T) {
	embedder := &stubEmbedder{}
	p := newTestPipeline(t, memory.New(), embedder, WithBatchSize(2), WithPoolSize(1))

	docs := make([]core.Document, 5)
	for i := range docs {
		docs[i] = core.Document{ID: string(rune('a' + i)), Content: "text"}
	}
	require.NoError(t, p.Ingest(context.Background(), docs))

	require.Len(t, embedder.batches, 3)
	for _, batch := range embedder.batches {
		assert.LessOrEqual(t, len(batch), 2)
	}
}

func TestIngest_DoesNotMutateCallerDocuments(t *testing.T) {
	store := memory.New()
	p := newTestPipeline(t, store, &stubEmbedder{})

	docs := []core.Document{
		{ID: "a", Content: "alpha"},
		{ID: "b", Content: "beta"},
	}
	require.NoError(t, p.Ingest(context.Background(), docs))
	assert.Equal(t, 2, store.Len())

	// Computed vectors land in the store, not in the caller's slice
	for _, doc := range docs {
		assert.Nil(t, doc.Vector)
	}
}

func TestIngest_SkipsPreEmbeddedDocuments(t *testing.T) {
	store := memory.New()
	embedder := &stubEmbedder{}
	p := newTestPipeline(t, store, embedder)

	err := p.Ingest(context.Background(), []core.Document{
		{ID: "pre", Content: "already embedded", Vector: []float32{0, 1}},
	})
	require.NoError(t, err)
	assert.Empty(t, embedder.batches)
	assert.Equal(t, 1, store.Len())
}

func TestIngest_EmbedderError(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("provider down")}
	p := newTestPipeline(t, memory.New(), embedder)

	err := p.Ingest(context.Background(), []core.Document{{ID: "a", Content: "alpha"}})
	require.Error(t, err)
	assert.ErrorContains(t, err, "provider down")
}

func TestIngest_Empty(t *testing.T) {
	p := newTestPipeline(t, memory.New(), &stubEmbedder{})
	assert.NoError(t, p.Ingest(context.Background(), nil))
}
