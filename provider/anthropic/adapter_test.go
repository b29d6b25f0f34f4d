package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/modelkit/chat"
	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewAdapter(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "claude-sonnet-4-5",
	})
	require.NoError(t, err)
	return adapter
}

func TestNewAdapter_RequiresAPIKey(t *testing.T) {
	_, err := NewAdapter(Config{Model: "claude-sonnet-4-5"})
	require.Error(t, err)
}

func TestNewAdapter_RequiresModel(t *testing.T) {
	_, err := NewAdapter(Config{APIKey: "k"})
	require.Error(t, err)
}

func TestComplete(t *testing.T) {
	var captured messageRequest
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("Anthropic-Version"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg-1",
			"role":  "assistant",
			"model": "claude-sonnet-4-5",
			"content": []map[string]any{
				{"type": "text", "text": "hello"},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 3, "output_tokens": 1},
		})
	})

	completion, err := adapter.Complete(context.Background(), chat.Request{
		Messages: []core.Message{
			core.NewSystemMessage("be brief"),
			core.NewUserMessage("hi"),
		},
	})
	require.NoError(t, err)

	// System turns collapse into the request-level system field
	assert.Equal(t, "be brief", captured.System)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, defaultMaxTokens, captured.MaxTokens)

	require.Len(t, completion.Choices, 1)
	assert.Equal(t, "hello", completion.Choices[0].Content)
	assert.Equal(t, "end_turn", completion.Choices[0].FinishReason)
	require.NotNil(t, completion.Usage)
	assert.Equal(t, 4, completion.Usage.TotalTokens)
}

func TestComplete_ToolUse(t *testing.T) {
	var captured messageRequest
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg-1",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "tool_use", "id": "toolu-1", "name": "weather", "input": map[string]any{"city": "SF"}},
			},
			"stop_reason": "tool_use",
		})
	})

	completion, err := adapter.Complete(context.Background(), chat.Request{
		Messages: []core.Message{
			core.NewUserMessage("weather?"),
			core.NewAssistantMessage("", core.ToolCall{ID: "toolu-0", Name: "weather", Arguments: `{"city":"LA"}`}),
			core.NewToolMessage(core.ToolResult{ID: "toolu-0", Name: "weather", Result: "80F"}),
		},
		Tools: []chat.ToolDefinition{{Name: "weather", InputSchema: `{"type":"object"}`}},
	})
	require.NoError(t, err)

	require.Len(t, captured.Tools, 1)
	assert.Equal(t, "weather", captured.Tools[0].Name)

	// Tool results ride as user-turn tool_result blocks
	require.Len(t, captured.Messages, 3)
	last := captured.Messages[2]
	assert.Equal(t, "user", last.Role)
	require.Len(t, last.Content, 1)
	assert.Equal(t, "tool_result", last.Content[0].Type)
	assert.Equal(t, "toolu-0", last.Content[0].ToolUseID)
	assert.Equal(t, "80F", last.Content[0].Content)

	require.Len(t, completion.Choices, 1)
	assert.Equal(t, "tool_use", completion.Choices[0].FinishReason)
	require.Len(t, completion.Choices[0].ToolCalls, 1)
	assert.Equal(t, "toolu-1", completion.Choices[0].ToolCalls[0].ID)
	assert.JSONEq(t, `{"city":"SF"}`, completion.Choices[0].ToolCalls[0].Arguments)
}

func TestComplete_StatusError(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := adapter.Complete(context.Background(), chat.Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})
	require.Error(t, err)

	var statusErr *retry.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
}

func TestStream_TextDeltas(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "event: message_start\n")
		io.WriteString(w, `data: {"type":"message_start","message":{"id":"msg-1","role":"assistant","model":"claude-sonnet-4-5","usage":{"input_tokens":3}}}`+"\n\n")
		io.WriteString(w, "event: content_block_delta\n")
		io.WriteString(w, `data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"he"}}`+"\n\n")
		io.WriteString(w, "event: content_block_delta\n")
		io.WriteString(w, `data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"llo"}}`+"\n\n")
		io.WriteString(w, "event: message_delta\n")
		io.WriteString(w, `data: {"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":2}}`+"\n\n")
		io.WriteString(w, "event: message_stop\n")
		io.WriteString(w, `data: {"type":"message_stop"}`+"\n\n")
	})

	chunks, err := adapter.Stream(context.Background(), chat.Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})
	require.NoError(t, err)

	var content string
	var roles []string
	var finish string
	var usage *core.Usage
	for chunk, chunkErr := range chunks {
		require.NoError(t, chunkErr)
		assert.Equal(t, "msg-1", chunk.ID)
		require.Len(t, chunk.Choices, 1)
		content += chunk.Choices[0].Content
		if chunk.Choices[0].Role != "" {
			roles = append(roles, chunk.Choices[0].Role)
		}
		if chunk.Choices[0].FinishReason != "" {
			finish = chunk.Choices[0].FinishReason
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
	}

	assert.Equal(t, "hello", content)
	// Role arrives only on the first chunk
	assert.Equal(t, []string{"assistant"}, roles)
	assert.Equal(t, "end_turn", finish)

	// Terminal usage folds message_start's input tokens into the totals
	require.NotNil(t, usage)
	assert.Equal(t, 3, usage.PromptTokens)
	assert.Equal(t, 2, usage.CompletionTokens)
	assert.Equal(t, 5, usage.TotalTokens)
}

func TestStream_ToolUseDeltas(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, `data: {"type":"message_start","message":{"id":"msg-1","role":"assistant"}}`+"\n\n")
		io.WriteString(w, `data: {"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu-1","name":"weather"}}`+"\n\n")
		io.WriteString(w, `data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"ci"}}`+"\n\n")
		io.WriteString(w, `data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"ty\":\"SF\"}"}}`+"\n\n")
		io.WriteString(w, `data: {"type":"message_delta","delta":{"stop_reason":"tool_use"}}`+"\n\n")
		io.WriteString(w, `data: {"type":"message_stop"}`+"\n\n")
	})

	chunks, err := adapter.Stream(context.Background(), chat.Request{
		Messages: []core.Message{core.NewUserMessage("weather?")},
	})
	require.NoError(t, err)

	var calls []core.ToolCall
	var finish string
	for chunk, chunkErr := range chunks {
		require.NoError(t, chunkErr)
		calls = append(calls, chunk.Choices[0].ToolCalls...)
		if chunk.Choices[0].FinishReason != "" {
			finish = chunk.Choices[0].FinishReason
		}
	}

	assert.Equal(t, "tool_use", finish)
	require.Len(t, calls, 3)
	assert.Equal(t, "toolu-1", calls[0].ID)
	assert.Equal(t, "weather", calls[0].Name)
	assert.Equal(t, `{"ci`, calls[1].Arguments)
	assert.Equal(t, `ty":"SF"}`, calls[2].Arguments)
}

func TestToolCallTriggers(t *testing.T) {
	adapter, err := NewAdapter(Config{APIKey: "k", Model: "claude-sonnet-4-5"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tool_use"}, adapter.ToolCallTriggers())
	assert.Equal(t, "anthropic", adapter.Provider())
}
