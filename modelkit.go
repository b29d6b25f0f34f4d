// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package modelkit provides a uniform chat, embedding and vector
// search surface over AI providers. The Client ties the pieces
// together; the sub-packages can also be used directly.
package modelkit

import (
	"log/slog"

	"github.com/poiesic/modelkit/chat"
	"github.com/poiesic/modelkit/embedding"
	"github.com/poiesic/modelkit/ingest"
	"github.com/poiesic/modelkit/provider"
	"github.com/poiesic/modelkit/tools"
	"github.com/poiesic/modelkit/vectorstore"
	"github.com/poiesic/modelkit/vectorstore/memory"
)

// Client bundles a chat model, an embedder and a vector store built
// from one provider configuration.
type Client struct {
	model    chat.Model
	embedder embedding.Embedder
	store    vectorstore.Store
	registry *tools.Registry
	logger   *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	store    vectorstore.Store
	registry *tools.Registry
}

// WithStore sets the vector store backend.
// Default is the in-memory store.
func WithStore(store vectorstore.Store) ClientOption {
	return func(o *clientOptions) {
		o.store = store
	}
}

// WithTools sets the tool registry consulted when the model requests
// tool invocations.
func WithTools(registry *tools.Registry) ClientOption {
	return func(o *clientOptions) {
		o.registry = registry
	}
}

// NewClient builds a client from the provider configuration.
func NewClient(config *provider.Config, opts ...ClientOption) (*Client, error) {
	options := &clientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	engineOpts := []chat.Option{}
	if options.registry != nil {
		engineOpts = append(engineOpts, chat.WithRegistry(options.registry))
	}

	model, err := provider.NewChatModel(config, engineOpts...)
	if err != nil {
		return nil, err
	}

	// Chat-only configurations skip the embedder entirely; providers
	// without an embeddings API stay usable through the client.
	var embedder embedding.Embedder
	if config.EmbeddingModel != "" {
		embedder, err = provider.NewEmbedder(config)
		if err != nil {
			return nil, err
		}
	}

	store := options.store
	if store == nil {
		store = memory.New()
	}

	return &Client{
		model:    model,
		embedder: embedder,
		store:    store,
		registry: options.registry,
		logger:   slog.Default(),
	}, nil
}

// Close releases the vector store.
func (c *Client) Close() error {
	if err := c.store.Close(); err != nil {
		c.logger.Error("error closing vector store", "err", err)
		return err
	}
	return nil
}

// Chat returns the chat model.
func (c *Client) Chat() chat.Model {
	return c.model
}

// Embedder returns the embedder, or nil when the configuration names
// no embedding model.
func (c *Client) Embedder() embedding.Embedder {
	return c.embedder
}

// Store returns the vector store.
func (c *Client) Store() vectorstore.Store {
	return c.store
}

// NewIngestPipeline creates an ingestion pipeline over the client's
// store and embedder.
func (c *Client) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(c.store, c.embedder, opts...)
}

// NewSearcher creates a text searcher over the client's store and
// embedder.
func (c *Client) NewSearcher(opts ...vectorstore.SearcherOption) (*vectorstore.Searcher, error) {
	return vectorstore.NewSearcher(c.store, c.embedder, opts...)
}
