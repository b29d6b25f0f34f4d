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

package provider

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/retry"
)

// Provider name constants accepted by the factory.
const (
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Local     = "local"
)

const defaultHTTPTimeout = 60 * time.Second

var (
	// ErrProviderRequired is returned when no provider name is configured.
	ErrProviderRequired = errors.New("provider name required")

	// ErrUnknownProvider is returned for a provider name the factory
	// does not recognize.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrModelRequired is returned when no model identifier is configured.
	ErrModelRequired = errors.New("model identifier required")
)

// Config holds configuration for a model provider.
type Config struct {
	// Provider selects the backend: "openai", "anthropic" or "local".
	Provider string

	// APIKey authenticates against the provider. Local OpenAI-compatible
	// services that skip authentication may leave it empty.
	APIKey string

	// BaseURL overrides the provider's default API endpoint.
	// Example: "http://localhost:11434/v1" for a local server.
	BaseURL string

	// Model is the chat model identifier.
	// Example: "gpt-4o-mini", "claude-sonnet-4-5"
	Model string

	// EmbeddingModel is the model identifier for text embeddings.
	// Example: "text-embedding-3-small", "embeddinggemma"
	EmbeddingModel string

	// Defaults are the chat options merged under every prompt.
	Defaults *core.ChatOptions

	// Retry is the retry policy for outbound calls. The zero value
	// means retry.DefaultPolicy().
	Retry retry.Policy

	// MaxToolRounds bounds tool-call rounds per request. Zero means the
	// engine default.
	MaxToolRounds int

	// EmbedBatchLimit is the provider's embedding batch ceiling.
	// Zero or less means unbounded.
	EmbedBatchLimit int

	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
}

// Validate checks the config and normalizes its fields in place.
func (c *Config) Validate() error {
	if c == nil {
		return core.Preconditionf("config is nil")
	}

	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		return core.Precondition(ErrProviderRequired)
	}

	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Model = strings.TrimSpace(c.Model)
	c.EmbeddingModel = strings.TrimSpace(c.EmbeddingModel)

	if c.Retry.MaxAttempts == 0 {
		c.Retry = retry.DefaultPolicy()
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return nil
}
