package core

// Role identifies the author of a conversational message.
type Role string

const (
	// RoleSystem carries instructions that frame the conversation.
	RoleSystem Role = "system"
	// RoleUser is an end-user turn, optionally with media attachments.
	RoleUser Role = "user"
	// RoleAssistant is a model turn, optionally carrying tool calls.
	RoleAssistant Role = "assistant"
	// RoleTool carries the results of executed tool calls back to the model.
	RoleTool Role = "tool"
)

// Media is a multimodal attachment on a user message.
// Either Data or URL is set, never both.
type Media struct {
	MIMEType string
	Data     []byte
	URL      string
}

// ToolCall is a tool invocation requested by an assistant message.
// Arguments is the serialized JSON payload exactly as the provider sent it.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolResult is the outcome of one executed tool call. ID and Name must
// reference a ToolCall from a preceding assistant message.
type ToolResult struct {
	ID     string
	Name   string
	Result string
}

// Message is a single conversational turn. The Role determines which
// fields are meaningful: Media only on user turns, ToolCalls only on
// assistant turns, ToolResults only on tool turns.
type Message struct {
	Role        Role
	Content     string
	Media       []Media
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message with optional media attachments.
func NewUserMessage(content string, media ...Media) Message {
	return Message{Role: RoleUser, Content: content, Media: media}
}

// NewAssistantMessage creates an assistant message with optional tool calls.
func NewAssistantMessage(content string, toolCalls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
}

// NewToolMessage creates a tool-result message.
func NewToolMessage(results ...ToolResult) Message {
	return Message{Role: RoleTool, ToolResults: results}
}

// Prompt is the full input to a chat model call: an ordered message
// sequence plus optional per-call options. A Prompt is treated as
// immutable once submitted; anything that needs to extend the
// conversation builds a new Prompt.
type Prompt struct {
	Messages []Message
	Options  *ChatOptions
}

// NewPrompt creates a prompt without per-call options.
func NewPrompt(messages ...Message) Prompt {
	return Prompt{Messages: messages}
}

// WithOptions returns a copy of the prompt carrying the given options.
func (p Prompt) WithOptions(opts *ChatOptions) Prompt {
	return Prompt{Messages: p.Messages, Options: opts}
}
