package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/embedding"
	"github.com/poiesic/modelkit/provider/internal/httpx"
)

// Embedder implements embedding.Embedder against the embeddings API.
type Embedder struct {
	config Config
	logger *slog.Logger
}

var _ embedding.Embedder = (*Embedder)(nil)

// NewEmbedder creates an embedder for the configured endpoint.
func NewEmbedder(config Config) (*Embedder, error) {
	if config.EmbeddingModel == "" {
		return nil, core.Preconditionf("openai embedding model identifier required")
	}
	return &Embedder{
		config: config,
		logger: slog.Default().With("component", "openai-embedder"),
	}, nil
}

// EmbedText generates an embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		e.logger.Warn("embedder returned empty result")
		return []float32{}, nil
	}
	return vectors[0], nil
}

// EmbedTexts generates embeddings for a batch of texts, in input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := embedding.CheckBatch(e.config.BatchLimit, len(texts)); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	hReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.baseURL()+embeddingsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if e.config.APIKey != "" {
		hReq.Header.Set("Authorization", "Bearer "+e.config.APIKey)
	}

	body, err := httpx.DoJSON(ctx, e.config.HTTPClient, hReq, embeddingRequest{
		Model: e.config.EmbeddingModel,
		Input: texts,
	})
	if err != nil {
		return nil, err
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, core.NonTransient(fmt.Errorf("parse response: %w", err))
	}
	if len(parsed.Data) != len(texts) {
		return nil, core.NonTransientf("embedding result mismatch. expected %d, received %d", len(texts), len(parsed.Data))
	}

	// Providers may return items out of order; index restores it.
	sort.Slice(parsed.Data, func(i, j int) bool {
		return parsed.Data[i].Index < parsed.Data[j].Index
	})

	vectors := make([][]float32, len(parsed.Data))
	for i, item := range parsed.Data {
		vectors[i] = item.Embedding
	}
	return vectors, nil
}
