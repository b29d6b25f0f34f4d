package openai

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
		Model:   "gpt-4o-mini",
	})
	require.NoError(t, err)
	return adapter
}

func TestNewAdapter_RequiresModel(t *testing.T) {
	_, err := NewAdapter(Config{})
	require.Error(t, err)
	var pre *core.PreconditionError
	assert.ErrorAs(t, err, &pre)
}

func TestComplete(t *testing.T) {
	var captured chatRequest
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"model":   "gpt-4o-mini",
			"created": 1700000000,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "hello"},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4},
		})
	})

	completion, err := adapter.Complete(context.Background(), chat.Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
		Options:  &core.ChatOptions{Temperature: core.Float64(0.2)},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	require.NotNil(t, captured.Temperature)
	assert.Equal(t, 0.2, *captured.Temperature)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)

	assert.Equal(t, "chatcmpl-1", completion.ID)
	require.Len(t, completion.Choices, 1)
	assert.Equal(t, "hello", completion.Choices[0].Content)
	assert.Equal(t, "stop", completion.Choices[0].FinishReason)
	require.NotNil(t, completion.Usage)
	assert.Equal(t, 4, completion.Usage.TotalTokens)
}

func TestComplete_SerializesToolsAndResults(t *testing.T) {
	var captured chatRequest
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		json.NewEncoder(w).Encode(map[string]any{"id": "x", "choices": []any{}})
	})

	_, err := adapter.Complete(context.Background(), chat.Request{
		Messages: []core.Message{
			core.NewUserMessage("weather?"),
			core.NewAssistantMessage("", core.ToolCall{ID: "call-1", Name: "weather", Arguments: `{"city":"SF"}`}),
			core.NewToolMessage(core.ToolResult{ID: "call-1", Name: "weather", Result: "72F"}),
		},
		Tools: []chat.ToolDefinition{{
			Name:        "weather",
			Description: "look up the weather",
			InputSchema: `{"type":"object"}`,
		}},
	})
	require.NoError(t, err)

	require.Len(t, captured.Tools, 1)
	assert.Equal(t, "function", captured.Tools[0].Type)
	assert.Equal(t, "weather", captured.Tools[0].Function.Name)

	require.Len(t, captured.Messages, 3)
	assert.Equal(t, "assistant", captured.Messages[1].Role)
	require.Len(t, captured.Messages[1].ToolCalls, 1)
	assert.Equal(t, "call-1", captured.Messages[1].ToolCalls[0].ID)

	assert.Equal(t, "tool", captured.Messages[2].Role)
	assert.Equal(t, "call-1", captured.Messages[2].ToolCallID)
	assert.Equal(t, "72F", captured.Messages[2].Content)
}

func TestComplete_StatusError(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := adapter.Complete(context.Background(), chat.Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})
	require.Error(t, err)

	var statusErr *retry.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
}

func TestStream(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, `data: {"id":"c1","choices":[{"index":0,"delta":{"role":"assistant","content":"he"}}]}`+"\n\n")
		io.WriteString(w, `data: {"id":"c1","choices":[{"index":0,"delta":{"content":"llo"},"finish_reason":"stop"}]}`+"\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	})

	chunks, err := adapter.Stream(context.Background(), chat.Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})
	require.NoError(t, err)

	var contents []string
	for chunk, chunkErr := range chunks {
		require.NoError(t, chunkErr)
		require.Len(t, chunk.Choices, 1)
		contents = append(contents, chunk.Choices[0].Content)
	}
	assert.Equal(t, []string{"he", "llo"}, contents)
}

func TestStream_ToolCallDeltas(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, `data: {"id":"c1","choices":[{"index":0,"delta":{"role":"assistant","tool_calls":[{"index":0,"id":"call-1","type":"function","function":{"name":"weather","arguments":"{\"ci"}}]}}]}`+"\n\n")
		io.WriteString(w, `data: {"id":"c1","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"ty\":\"SF\"}"}}]},"finish_reason":"tool_calls"}]}`+"\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
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

	assert.Equal(t, "tool_calls", finish)
	require.Len(t, calls, 2)
	assert.Equal(t, "call-1", calls[0].ID)
	assert.Equal(t, "weather", calls[0].Name)
	assert.Equal(t, `{"ci`, calls[0].Arguments)
	assert.Empty(t, calls[1].ID)
	assert.Equal(t, `ty":"SF"}`, calls[1].Arguments)
}

func TestStream_ErrorStatus(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	_, err := adapter.Stream(context.Background(), chat.Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})
	require.Error(t, err)

	var statusErr *retry.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
}

func TestToolCallTriggers(t *testing.T) {
	adapter, err := NewAdapter(Config{Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tool_calls"}, adapter.ToolCallTriggers())
	assert.Equal(t, "openai", adapter.Provider())
}
