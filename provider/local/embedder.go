package local

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/embedding"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements embedding.Embedder over the langchaingo client.
type Embedder struct {
	embedder   embeddings.Embedder
	batchLimit int
	logger     *slog.Logger
}

var _ embedding.Embedder = (*Embedder)(nil)

// NewEmbedder creates an embedder for the configured service.
// Uses "none" as token for local services that skip authentication.
func NewEmbedder(config Config) (*Embedder, error) {
	if strings.TrimSpace(config.EmbeddingModel) == "" {
		return nil, core.Preconditionf("local embedding model identifier required")
	}

	client, err := openai.New(
		openai.WithBaseURL(config.host()),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:   embedder,
		batchLimit: config.BatchLimit,
		logger:     slog.Default().With("component", "local-embedder"),
	}, nil
}

// EmbedText generates an embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
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
	if err := embedding.CheckBatch(e.batchLimit, len(texts)); err != nil {
		return nil, err
	}

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	return vectors, nil
}
