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

// Package anthropic adapts the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/modelkit/chat"
	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/provider/internal/httpx"
)

// Config holds the Anthropic connection settings.
type Config struct {
	// APIKey authenticates the requests.
	APIKey string

	// BaseURL overrides the default endpoint.
	BaseURL string

	// Model is the model identifier used when the request options
	// carry none.
	Model string

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

// Adapter implements chat.Adapter against the Messages API.
type Adapter struct {
	config Config
	logger *slog.Logger
}

var _ chat.Adapter = (*Adapter)(nil)

// NewAdapter creates an adapter for the configured endpoint.
func NewAdapter(config Config) (*Adapter, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, core.Preconditionf("anthropic api key required")
	}
	if strings.TrimSpace(config.Model) == "" {
		return nil, core.Preconditionf("anthropic model identifier required")
	}
	return &Adapter{
		config: config,
		logger: slog.Default().With("component", "anthropic-adapter"),
	}, nil
}

// Provider returns the adapter's provider name.
func (a *Adapter) Provider() string { return "anthropic" }

// ToolCallTriggers lists the stop reasons that signal tool calls.
func (a *Adapter) ToolCallTriggers() []string {
	return []string{"tool_use"}
}

func (a *Adapter) newRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.baseURL()+messagesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", a.config.APIKey)
	req.Header.Set("Anthropic-Version", anthropicVersion)
	return req, nil
}

// Complete performs one blocking completion call.
func (a *Adapter) Complete(ctx context.Context, req chat.Request) (*chat.Completion, error) {
	hReq, err := a.newRequest(ctx)
	if err != nil {
		return nil, err
	}

	body, err := httpx.DoJSON(ctx, a.config.HTTPClient, hReq, buildRequest(a.config.Model, req, false))
	if err != nil {
		return nil, err
	}

	var parsed messageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, core.NonTransient(fmt.Errorf("parse response: %w", err))
	}
	return decodeResponse(parsed), nil
}

// Stream opens a streaming completion. Anthropic stream events are
// folded into normalized chunks: text deltas carry content, tool_use
// block starts open a tool call, input_json_delta events extend its
// arguments, and message_delta carries the stop reason.
func (a *Adapter) Stream(ctx context.Context, req chat.Request) (iter.Seq2[*chat.Completion, error], error) {
	hReq, err := a.newRequest(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := httpx.DoStream(ctx, a.config.HTTPClient, hReq, buildRequest(a.config.Model, req, true))
	if err != nil {
		return nil, err
	}

	return func(yield func(*chat.Completion, error) bool) {
		defer stream.Close()

		var messageID, model string
		var inputTokens int
		emit := func(choice chat.Choice, usage *core.Usage) bool {
			return yield(&chat.Completion{
				ID:      messageID,
				Model:   model,
				Choices: []chat.Choice{choice},
				Usage:   usage,
			}, nil)
		}

		err := httpx.ConsumeSSE(ctx, stream, func(event, data string) error {
			var parsed streamEvent
			if err := json.Unmarshal([]byte(data), &parsed); err != nil {
				return core.NonTransient(fmt.Errorf("parse event: %w", err))
			}

			switch parsed.Type {
			case "message_start":
				if parsed.Message == nil {
					return nil
				}
				messageID = parsed.Message.ID
				model = parsed.Message.Model
				if parsed.Message.Usage != nil {
					inputTokens = parsed.Message.Usage.InputTokens
				}
				if !emit(chat.Choice{Role: parsed.Message.Role}, nil) {
					return errStreamDone
				}

			case "content_block_start":
				block := parsed.ContentBlock
				if block == nil || block.Type != "tool_use" {
					return nil
				}
				call := core.ToolCall{ID: block.ID, Name: block.Name}
				if !emit(chat.Choice{ToolCalls: []core.ToolCall{call}}, nil) {
					return errStreamDone
				}

			case "content_block_delta":
				delta := parsed.Delta
				if delta == nil {
					return nil
				}
				switch delta.Type {
				case "text_delta":
					if !emit(chat.Choice{Content: delta.Text}, nil) {
						return errStreamDone
					}
				case "input_json_delta":
					call := core.ToolCall{Arguments: delta.PartialJSON}
					if !emit(chat.Choice{ToolCalls: []core.ToolCall{call}}, nil) {
						return errStreamDone
					}
				}

			case "message_delta":
				var totals *core.Usage
				if parsed.Usage != nil {
					totals = &core.Usage{
						PromptTokens:     inputTokens,
						CompletionTokens: parsed.Usage.OutputTokens,
						TotalTokens:      inputTokens + parsed.Usage.OutputTokens,
					}
				}
				var stopReason string
				if parsed.Delta != nil {
					stopReason = parsed.Delta.StopReason
				}
				if !emit(chat.Choice{FinishReason: stopReason}, totals) {
					return errStreamDone
				}

			case "error":
				return core.NonTransient(fmt.Errorf("stream error event: %s", data))
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStreamDone) {
			yield(nil, err)
		}
	}, nil
}

// errStreamDone stops SSE consumption without surfacing an error.
var errStreamDone = errors.New("stream done")
