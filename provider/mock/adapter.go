package mock

import (
	"context"
	"iter"

	"github.com/poiesic/modelkit/chat"
	"github.com/poiesic/modelkit/core"
)

// Adapter is a test double for chat.Adapter.
// It allows custom behavior injection via function fields.
type Adapter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, echoes the last user message.
	CompleteFunc func(ctx context.Context, req chat.Request) (*chat.Completion, error)

	// StreamFunc is called by Stream if set.
	// If nil, yields the Complete result as a single chunk.
	StreamFunc func(ctx context.Context, req chat.Request) (iter.Seq2[*chat.Completion, error], error)

	// Triggers overrides the tool-call trigger set.
	// Default is ["tool_calls"].
	Triggers []string

	callCount int
}

var _ chat.Adapter = (*Adapter)(nil)

// NewAdapter creates a mock adapter with default echo behavior.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Provider returns the adapter's provider name.
func (m *Adapter) Provider() string { return "mock" }

// ToolCallTriggers lists the finish reasons that signal tool calls.
func (m *Adapter) ToolCallTriggers() []string {
	if m.Triggers != nil {
		return m.Triggers
	}
	return []string{"tool_calls"}
}

// Complete echoes the last user message unless CompleteFunc is set.
func (m *Adapter) Complete(ctx context.Context, req chat.Request) (*chat.Completion, error) {
	m.callCount++

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}

	return &chat.Completion{
		ID:    "mock-completion",
		Model: "mock",
		Choices: []chat.Choice{{
			Role:         string(core.RoleAssistant),
			Content:      lastUserContent(req.Messages),
			FinishReason: "stop",
		}},
	}, nil
}

// Stream yields the Complete result as one chunk unless StreamFunc is set.
func (m *Adapter) Stream(ctx context.Context, req chat.Request) (iter.Seq2[*chat.Completion, error], error) {
	m.callCount++

	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, req)
	}

	completion, err := m.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return func(yield func(*chat.Completion, error) bool) {
		yield(completion, nil)
	}, nil
}

// CallCount returns the number of times Complete or Stream was called.
func (m *Adapter) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected functions.
func (m *Adapter) Reset() {
	m.callCount = 0
	m.CompleteFunc = nil
	m.StreamFunc = nil
}

func lastUserContent(messages []core.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == core.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
