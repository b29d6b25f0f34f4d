package tools

import "context"

// Callback is a named capability the model may request to invoke.
// Implementations must be safe for concurrent use.
type Callback interface {
	// Name is the identifier the model uses to request the tool.
	Name() string

	// Description tells the model what the tool does.
	Description() string

	// InputSchema is the JSON schema for the tool's arguments.
	InputSchema() string

	// Call invokes the tool with the serialized JSON arguments the
	// model produced and returns a string result to feed back into
	// the conversation.
	Call(ctx context.Context, argumentsJSON string) (string, error)
}

// Func adapts a plain function into a Callback.
type Func struct {
	ToolName        string
	ToolDescription string
	Schema          string
	Fn              func(ctx context.Context, argumentsJSON string) (string, error)
}

var _ Callback = (*Func)(nil)

func (f *Func) Name() string        { return f.ToolName }
func (f *Func) Description() string { return f.ToolDescription }
func (f *Func) InputSchema() string { return f.Schema }

func (f *Func) Call(ctx context.Context, argumentsJSON string) (string, error) {
	return f.Fn(ctx, argumentsJSON)
}
