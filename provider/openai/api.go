package openai

import (
	"encoding/json"

	"github.com/poiesic/modelkit/chat"
	"github.com/poiesic/modelkit/core"
)

const (
	defaultBaseURL  = "https://api.openai.com/v1"
	completionsPath = "/chat/completions"
	embeddingsPath  = "/embeddings"
)

// chatRequest follows the OpenAI chat completions contract.
type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      *float64      `json:"temperature,omitempty"`
	TopP             *float64      `json:"top_p,omitempty"`
	MaxTokens        *int          `json:"max_tokens,omitempty"`
	Stop             []string      `json:"stop,omitempty"`
	PresencePenalty  *float64      `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64      `json:"frequency_penalty,omitempty"`
	Tools            []toolSpec    `json:"tools,omitempty"`
	Stream           bool          `json:"stream,omitempty"`
	StreamOptions    *streamOpts   `json:"stream_options,omitempty"`
}

type streamOpts struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []toolCallSpec `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type toolCallSpec struct {
	Index    *int         `json:"index,omitempty"`
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function functionCall `json:"function"`
}

type functionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Created int64        `json:"created"`
	Choices []chatChoice `json:"choices"`
	Usage   *usage       `json:"usage"`
}

type chatChoice struct {
	Index        int          `json:"index"`
	Message      *chatMessage `json:"message,omitempty"`
	Delta        *chatMessage `json:"delta,omitempty"`
	FinishReason string       `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
	Usage *usage `json:"usage"`
}

// buildRequest maps a normalized request onto the wire format.
func buildRequest(model string, req chat.Request, stream bool) chatRequest {
	out := chatRequest{
		Model:    model,
		Messages: make([]chatMessage, 0, len(req.Messages)),
		Stream:   stream,
	}
	if stream {
		out.StreamOptions = &streamOpts{IncludeUsage: true}
	}

	if opts := req.Options; opts != nil {
		if opts.Model != "" {
			out.Model = opts.Model
		}
		out.Temperature = opts.Temperature
		out.TopP = opts.TopP
		out.MaxTokens = opts.MaxTokens
		out.Stop = opts.StopSequences
		out.PresencePenalty = opts.PresencePenalty
		out.FrequencyPenalty = opts.FrequencyPenalty
	}

	for _, def := range req.Tools {
		spec := toolSpec{
			Type: "function",
			Function: functionSpec{
				Name:        def.Name,
				Description: def.Description,
			},
		}
		if def.InputSchema != "" {
			spec.Function.Parameters = json.RawMessage(def.InputSchema)
		}
		out.Tools = append(out.Tools, spec)
	}

	for _, msg := range req.Messages {
		out.Messages = append(out.Messages, encodeMessage(msg)...)
	}
	return out
}

// encodeMessage maps one core message to wire messages. A tool turn
// fans out into one wire message per tool result.
func encodeMessage(msg core.Message) []chatMessage {
	switch msg.Role {
	case core.RoleTool:
		out := make([]chatMessage, 0, len(msg.ToolResults))
		for _, result := range msg.ToolResults {
			out = append(out, chatMessage{
				Role:       "tool",
				Content:    result.Result,
				ToolCallID: result.ID,
				Name:       result.Name,
			})
		}
		return out

	case core.RoleAssistant:
		wire := chatMessage{Role: "assistant", Content: msg.Content}
		for _, call := range msg.ToolCalls {
			wire.ToolCalls = append(wire.ToolCalls, toolCallSpec{
				ID:   call.ID,
				Type: "function",
				Function: functionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		return []chatMessage{wire}

	default:
		return []chatMessage{{Role: string(msg.Role), Content: msg.Content}}
	}
}

// decodeCompletion maps a wire response or stream chunk onto the
// normalized shape. Streaming chunks carry their payload under delta.
func decodeCompletion(resp chatResponse) *chat.Completion {
	out := &chat.Completion{
		ID:      resp.ID,
		Model:   resp.Model,
		Created: resp.Created,
		Choices: make([]chat.Choice, 0, len(resp.Choices)),
	}
	if resp.Usage != nil {
		out.Usage = &core.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	for _, wireChoice := range resp.Choices {
		msg := wireChoice.Message
		if msg == nil {
			msg = wireChoice.Delta
		}
		choice := chat.Choice{
			Index:        wireChoice.Index,
			FinishReason: wireChoice.FinishReason,
		}
		if msg != nil {
			choice.Role = msg.Role
			choice.Content = msg.Content
			for _, call := range msg.ToolCalls {
				choice.ToolCalls = append(choice.ToolCalls, core.ToolCall{
					ID:        call.ID,
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				})
			}
		}
		out.Choices = append(out.Choices, choice)
	}
	return out
}
