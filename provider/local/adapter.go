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

// Package local adapts local OpenAI-compatible services (Ollama,
// llama.cpp, vLLM) through the langchaingo client. Streaming is not
// supported; use the openai adapter against the same endpoint for
// streamed completions.
package local

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"strings"

	"github.com/poiesic/modelkit/chat"
	"github.com/poiesic/modelkit/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const defaultHost = "http://localhost:11434/v1"

// Config holds the local service connection settings.
type Config struct {
	// Host is the base URL of the OpenAI-compatible service.
	// Default: "http://localhost:11434/v1"
	Host string

	// Model is the chat model identifier.
	Model string

	// EmbeddingModel is the embeddings model identifier.
	EmbeddingModel string

	// BatchLimit is the embedding batch ceiling. Zero means unbounded.
	BatchLimit int
}

func (c Config) host() string {
	if strings.TrimSpace(c.Host) == "" {
		return defaultHost
	}
	return strings.TrimRight(c.Host, "/")
}

// Adapter implements chat.Adapter over a langchaingo client.
type Adapter struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

var _ chat.Adapter = (*Adapter)(nil)

// NewAdapter creates an adapter for the configured service.
// Uses "none" as token for local services that skip authentication.
func NewAdapter(config Config) (*Adapter, error) {
	if strings.TrimSpace(config.Model) == "" {
		return nil, core.Preconditionf("local model identifier required")
	}

	client, err := openai.New(
		openai.WithBaseURL(config.host()),
		openai.WithToken("none"),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		client: client,
		model:  config.Model,
		logger: slog.Default().With("component", "local-adapter"),
	}, nil
}

// Provider returns the adapter's provider name.
func (a *Adapter) Provider() string { return "local" }

// ToolCallTriggers lists the finish reasons that signal tool calls.
// Local OpenAI-compatible services reuse the OpenAI code.
func (a *Adapter) ToolCallTriggers() []string {
	return []string{"tool_calls"}
}

// Complete performs one blocking completion call.
func (a *Adapter) Complete(ctx context.Context, req chat.Request) (*chat.Completion, error) {
	content := make([]llms.MessageContent, 0, len(req.Messages))
	for _, msg := range req.Messages {
		content = append(content, encodeMessage(msg)...)
	}

	response, err := a.client.GenerateContent(ctx, content, a.callOptions(req)...)
	if err != nil {
		return nil, err
	}

	out := &chat.Completion{Model: a.model}
	for i, choice := range response.Choices {
		normalized := chat.Choice{
			Index:        i,
			Role:         string(core.RoleAssistant),
			Content:      choice.Content,
			FinishReason: choice.StopReason,
		}
		for _, call := range choice.ToolCalls {
			if call.FunctionCall == nil {
				continue
			}
			normalized.ToolCalls = append(normalized.ToolCalls, core.ToolCall{
				ID:        call.ID,
				Name:      call.FunctionCall.Name,
				Arguments: call.FunctionCall.Arguments,
			})
		}
		out.Choices = append(out.Choices, normalized)
	}
	return out, nil
}

// Stream is not supported by the local adapter.
func (a *Adapter) Stream(ctx context.Context, req chat.Request) (iter.Seq2[*chat.Completion, error], error) {
	return nil, core.Preconditionf("local adapter does not support streaming")
}

func (a *Adapter) callOptions(req chat.Request) []llms.CallOption {
	var callOpts []llms.CallOption
	if opts := req.Options; opts != nil {
		if opts.Model != "" {
			callOpts = append(callOpts, llms.WithModel(opts.Model))
		}
		if opts.Temperature != nil {
			callOpts = append(callOpts, llms.WithTemperature(*opts.Temperature))
		}
		if opts.TopP != nil {
			callOpts = append(callOpts, llms.WithTopP(*opts.TopP))
		}
		if opts.MaxTokens != nil {
			callOpts = append(callOpts, llms.WithMaxTokens(*opts.MaxTokens))
		}
		if len(opts.StopSequences) > 0 {
			callOpts = append(callOpts, llms.WithStopWords(opts.StopSequences))
		}
	}

	if len(req.Tools) > 0 {
		specs := make([]llms.Tool, 0, len(req.Tools))
		for _, def := range req.Tools {
			fn := &llms.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
			}
			if def.InputSchema != "" {
				fn.Parameters = json.RawMessage(def.InputSchema)
			}
			specs = append(specs, llms.Tool{Type: "function", Function: fn})
		}
		callOpts = append(callOpts, llms.WithTools(specs))
	}
	return callOpts
}

// encodeMessage maps one core message onto langchaingo content. A tool
// turn fans out into one tool response message per result.
func encodeMessage(msg core.Message) []llms.MessageContent {
	switch msg.Role {
	case core.RoleSystem:
		return []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeSystem, msg.Content)}

	case core.RoleAssistant:
		content := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if msg.Content != "" {
			content.Parts = append(content.Parts, llms.TextPart(msg.Content))
		}
		for _, call := range msg.ToolCalls {
			content.Parts = append(content.Parts, llms.ToolCall{
				ID:   call.ID,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		return []llms.MessageContent{content}

	case core.RoleTool:
		out := make([]llms.MessageContent, 0, len(msg.ToolResults))
		for _, result := range msg.ToolResults {
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: result.ID,
					Name:       result.Name,
					Content:    result.Result,
				}},
			})
		}
		return out

	default:
		return []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, msg.Content)}
	}
}
