package provider

import (
	"fmt"

	"github.com/poiesic/modelkit/chat"
	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/embedding"
	"github.com/poiesic/modelkit/provider/anthropic"
	"github.com/poiesic/modelkit/provider/local"
	"github.com/poiesic/modelkit/provider/openai"
)

// NewAdapter builds the chat adapter declared by the config.
func NewAdapter(config *Config) (chat.Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Model == "" {
		return nil, core.Precondition(ErrModelRequired)
	}

	switch config.Provider {
	case OpenAI:
		return openai.NewAdapter(openai.Config{
			APIKey:     config.APIKey,
			BaseURL:    config.BaseURL,
			Model:      config.Model,
			HTTPClient: config.HTTPClient,
		})

	case Anthropic:
		return anthropic.NewAdapter(anthropic.Config{
			APIKey:     config.APIKey,
			BaseURL:    config.BaseURL,
			Model:      config.Model,
			HTTPClient: config.HTTPClient,
		})

	case Local:
		return local.NewAdapter(local.Config{
			Host:  config.BaseURL,
			Model: config.Model,
		})

	default:
		return nil, core.Precondition(fmt.Errorf("%w: %q", ErrUnknownProvider, config.Provider))
	}
}

// NewChatModel builds a chat model for the configured provider: the
// provider adapter wrapped in the engine that handles retries, tool
// rounds and response reconciliation. Additional engine options, such
// as chat.WithRegistry, are applied after the config-derived ones.
func NewChatModel(config *Config, opts ...chat.Option) (chat.Model, error) {
	adapter, err := NewAdapter(config)
	if err != nil {
		return nil, err
	}

	engineOpts := []chat.Option{chat.WithRetryPolicy(config.Retry)}
	if config.Defaults != nil {
		engineOpts = append(engineOpts, chat.WithDefaults(config.Defaults))
	}
	if config.MaxToolRounds > 0 {
		engineOpts = append(engineOpts, chat.WithMaxToolRounds(config.MaxToolRounds))
	}
	engineOpts = append(engineOpts, opts...)

	return chat.NewEngine(adapter, engineOpts...)
}

// NewEmbedder builds the embedder declared by the config.
func NewEmbedder(config *Config) (embedding.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Provider {
	case OpenAI:
		return openai.NewEmbedder(openai.Config{
			APIKey:         config.APIKey,
			BaseURL:        config.BaseURL,
			EmbeddingModel: config.EmbeddingModel,
			BatchLimit:     config.EmbedBatchLimit,
			HTTPClient:     config.HTTPClient,
		})

	case Local:
		return local.NewEmbedder(local.Config{
			Host:           config.BaseURL,
			EmbeddingModel: config.EmbeddingModel,
			BatchLimit:     config.EmbedBatchLimit,
		})

	case Anthropic:
		return nil, core.Preconditionf("provider %q has no embeddings API", config.Provider)

	default:
		return nil, core.Precondition(fmt.Errorf("%w: %q", ErrUnknownProvider, config.Provider))
	}
}
