package chat

import (
	"context"
	"iter"

	"github.com/poiesic/modelkit/core"
)

// Model is the caller-facing chat contract.
type Model interface {
	// Call submits the prompt and blocks until the terminal response,
	// inclusive of any tool-call rounds.
	Call(ctx context.Context, prompt core.Prompt) (*core.ChatResponse, error)

	// Stream submits the prompt and yields one ChatResponse per chunk.
	// The sequence is forward-only and not restartable; breaking out of
	// the loop releases the underlying connection.
	Stream(ctx context.Context, prompt core.Prompt) iter.Seq2[*core.ChatResponse, error]
}

// Request is the merged, provider-agnostic request an Adapter maps to
// its vendor wire format. Options are fully merged; the adapter only
// translates, it never applies defaults of its own beyond the model id.
type Request struct {
	Messages []core.Message
	Options  *core.ChatOptions

	// Tools are the resolved definitions for Options.Tools, in the
	// same order.
	Tools []ToolDefinition
}

// ToolDefinition is the provider-facing description of an enabled tool.
type ToolDefinition struct {
	Name        string
	Description string
	// InputSchema is the JSON schema for the tool's arguments.
	InputSchema string
}

// Choice is one candidate completion inside a Completion.
// In streaming mode the fields are deltas: Content and tool-call
// arguments arrive in fragments, and Role is only present on the first
// chunk of a response.
type Choice struct {
	Index        int
	Role         string
	Content      string
	ToolCalls    []core.ToolCall
	FinishReason string
}

// Completion is the normalized shape of a provider completion or
// stream chunk. Usage must be nil on every chunk except, possibly, the
// terminal one.
type Completion struct {
	ID      string
	Model   string
	Created int64
	Choices []Choice
	Usage   *core.Usage
}

// Adapter is the per-provider capability interface. Implementations
// translate between the provider's wire format and the normalized
// types above; they carry no retry, tool or reconciliation logic.
type Adapter interface {
	// Provider is the adapter's provider name, e.g. "openai".
	Provider() string

	// Complete performs one blocking completion call.
	Complete(ctx context.Context, req Request) (*Completion, error)

	// Stream opens a streaming completion. The returned sequence yields
	// chunks in emission order and must stop fetching when the consumer
	// stops iterating.
	Stream(ctx context.Context, req Request) (iter.Seq2[*Completion, error], error)

	// ToolCallTriggers lists the finish reasons that signal a pending
	// tool invocation.
	ToolCallTriggers() []string
}
