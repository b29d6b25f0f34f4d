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

// Package openai adapts the OpenAI chat completions and embeddings
// APIs. It also serves any OpenAI-compatible endpoint via BaseURL.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/modelkit/chat"
	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/provider/internal/httpx"
)

// streamDone is the sentinel payload terminating an OpenAI SSE stream.
const streamDone = "[DONE]"

// Config holds the OpenAI connection settings.
type Config struct {
	// APIKey authenticates the requests. Optional for local
	// OpenAI-compatible services.
	APIKey string

	// BaseURL overrides the default endpoint. Must include the /v1
	// path segment when the service expects one.
	BaseURL string

	// Model is the chat model identifier used when the request options
	// carry none.
	Model string

	// EmbeddingModel is the embeddings model identifier.
	EmbeddingModel string

	// BatchLimit is the embedding batch ceiling. Zero means unbounded.
	BatchLimit int

	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
}

func (c Config) baseURL() string {
	url := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if url == "" {
		return defaultBaseURL
	}
	return url
}

// Adapter implements chat.Adapter against the chat completions API.
type Adapter struct {
	config Config
	logger *slog.Logger
}

var _ chat.Adapter = (*Adapter)(nil)

// NewAdapter creates an adapter for the configured endpoint.
func NewAdapter(config Config) (*Adapter, error) {
	if strings.TrimSpace(config.Model) == "" {
		return nil, core.Preconditionf("openai model identifier required")
	}
	return &Adapter{
		config: config,
		logger: slog.Default().With("component", "openai-adapter"),
	}, nil
}

// Provider returns the adapter's provider name.
func (a *Adapter) Provider() string { return "openai" }

// ToolCallTriggers lists the finish reasons that signal tool calls.
func (a *Adapter) ToolCallTriggers() []string {
	return []string{"tool_calls"}
}

func (a *Adapter) newRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.baseURL()+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if a.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}
	return req, nil
}

// Complete performs one blocking completion call.
func (a *Adapter) Complete(ctx context.Context, req chat.Request) (*chat.Completion, error) {
	hReq, err := a.newRequest(ctx, completionsPath)
	if err != nil {
		return nil, err
	}

	body, err := httpx.DoJSON(ctx, a.config.HTTPClient, hReq, buildRequest(a.config.Model, req, false))
	if err != nil {
		return nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, core.NonTransient(fmt.Errorf("parse response: %w", err))
	}
	return decodeCompletion(parsed), nil
}

// Stream opens a streaming completion. Chunks are yielded in emission
// order; abandoning the sequence closes the connection.
func (a *Adapter) Stream(ctx context.Context, req chat.Request) (iter.Seq2[*chat.Completion, error], error) {
	hReq, err := a.newRequest(ctx, completionsPath)
	if err != nil {
		return nil, err
	}

	stream, err := httpx.DoStream(ctx, a.config.HTTPClient, hReq, buildRequest(a.config.Model, req, true))
	if err != nil {
		return nil, err
	}

	return func(yield func(*chat.Completion, error) bool) {
		defer stream.Close()

		err := httpx.ConsumeSSE(ctx, stream, func(event, data string) error {
			if data == streamDone {
				return errStreamDone
			}

			var parsed chatResponse
			if err := json.Unmarshal([]byte(data), &parsed); err != nil {
				return core.NonTransient(fmt.Errorf("parse chunk: %w", err))
			}
			if !yield(decodeCompletion(parsed), nil) {
				return errStreamDone
			}
			return nil
		})
		if err != nil && err != errStreamDone {
			yield(nil, err)
		}
	}, nil
}

// errStreamDone stops SSE consumption without surfacing an error.
var errStreamDone = fmt.Errorf("stream done")
