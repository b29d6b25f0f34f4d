package badger

import (
	"context"
	"testing"

	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_InMemory(t *testing.T) {
	store, err := Open("", true)
	require.NoError(t, err)
	require.NotNil(t, store)
	require.NoError(t, store.Close())
}

func TestOpen_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := Open(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, store)
	require.NoError(t, store.Close())
}

func TestAddGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	doc := core.Document{
		ID:       "d1",
		Content:  "hello world",
		Metadata: map[string]any{"lang": "en"},
		Vector:   []float32{0.6, 0.8},
	}
	require.NoError(t, store.Add(ctx, []core.Document{doc}))

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Content)
	assert.Equal(t, "en", got.Metadata["lang"])
	assert.Equal(t, doc.Vector, got.Vector)
}

func TestGet_NotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, vectorstore.ErrNotFound)
}

func TestAdd_RejectsMissingVector(t *testing.T) {
	store := openTestStore(t)

	err := store.Add(context.Background(), []core.Document{{ID: "x", Content: "no vector"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMissingVector)
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []core.Document{
		{ID: "close", Vector: []float32{1, 0}},
		{ID: "mid", Vector: []float32{0.7, 0.7}},
		{ID: "far", Vector: []float32{0, 1}},
	}))

	results, err := store.Search(ctx, vectorstore.SearchRequest{
		Vector: []float32{1, 0},
		TopK:   2,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "close", results[0].Document.ID)
	assert.Equal(t, "mid", results[1].Document.ID)
}

func TestSearch_NoDocuments(t *testing.T) {
	store := openTestStore(t)

	results, err := store.Search(context.Background(), vectorstore.SearchRequest{
		Vector: []float32{1, 0},
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_Filter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []core.Document{
		{ID: "en", Vector: []float32{1, 0}, Metadata: map[string]any{"lang": "en"}},
		{ID: "fr", Vector: []float32{1, 0}, Metadata: map[string]any{"lang": "fr"}},
	}))

	results, err := store.Search(ctx, vectorstore.SearchRequest{
		Vector: []float32{1, 0},
		Filter: map[string]any{"lang": "fr"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "fr", results[0].Document.ID)
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []core.Document{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "b", Vector: []float32{0, 1}},
	}))
	require.NoError(t, store.Delete(ctx, []string{"a", "unknown"}))

	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, vectorstore.ErrNotFound)

	got, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)
}
