package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/poiesic/modelkit/chat"
	"github.com/poiesic/modelkit/core"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	messagesPath     = "/v1/messages"
	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 1024
)

// messageRequest follows the Anthropic Messages API contract.
type messageRequest struct {
	Model         string         `json:"model"`
	Messages      []messageParam `json:"messages"`
	System        string         `json:"system,omitempty"`
	MaxTokens     int            `json:"max_tokens"`
	Temperature   *float64       `json:"temperature,omitempty"`
	TopP          *float64       `json:"top_p,omitempty"`
	StopSequences []string       `json:"stop_sequences,omitempty"`
	Tools         []toolSpec     `json:"tools,omitempty"`
	Stream        bool           `json:"stream,omitempty"`
}

// messageParam represents a single conversational turn.
type messageParam struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

// contentBlock is a union type for text, tool_use, and tool_result blocks.
type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

type toolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// messageResponse captures the Anthropic message schema we care about.
type messageResponse struct {
	ID         string         `json:"id"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      *usage         `json:"usage"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Stream event payloads used by the SSE channel.
type streamEvent struct {
	Type    string `json:"type"`
	Index   int    `json:"index"`
	Message *struct {
		ID    string `json:"id"`
		Role  string `json:"role"`
		Model string `json:"model"`
		Usage *usage `json:"usage"`
	} `json:"message"`
	ContentBlock *contentBlock `json:"content_block"`
	Delta        *struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		PartialJSON string `json:"partial_json"`
		StopReason  string `json:"stop_reason"`
	} `json:"delta"`
	Usage *usage `json:"usage"`
}

// buildRequest maps a normalized request onto the wire format. System
// turns collapse into the request-level system field.
func buildRequest(model string, req chat.Request, stream bool) messageRequest {
	out := messageRequest{
		Model:     model,
		MaxTokens: defaultMaxTokens,
		Stream:    stream,
	}

	if opts := req.Options; opts != nil {
		if opts.Model != "" {
			out.Model = opts.Model
		}
		if opts.MaxTokens != nil {
			out.MaxTokens = *opts.MaxTokens
		}
		out.Temperature = opts.Temperature
		out.TopP = opts.TopP
		out.StopSequences = opts.StopSequences
	}

	for _, def := range req.Tools {
		spec := toolSpec{Name: def.Name, Description: def.Description}
		if def.InputSchema != "" {
			spec.InputSchema = json.RawMessage(def.InputSchema)
		}
		out.Tools = append(out.Tools, spec)
	}

	var system []string
	for _, msg := range req.Messages {
		switch msg.Role {
		case core.RoleSystem:
			system = append(system, msg.Content)
		case core.RoleAssistant:
			out.Messages = append(out.Messages, encodeAssistant(msg))
		case core.RoleTool:
			out.Messages = append(out.Messages, encodeToolResults(msg))
		default:
			out.Messages = append(out.Messages, messageParam{
				Role:    "user",
				Content: []contentBlock{{Type: "text", Text: msg.Content}},
			})
		}
	}
	out.System = strings.Join(system, "\n\n")
	return out
}

func encodeAssistant(msg core.Message) messageParam {
	param := messageParam{Role: "assistant"}
	if msg.Content != "" {
		param.Content = append(param.Content, contentBlock{Type: "text", Text: msg.Content})
	}
	for _, call := range msg.ToolCalls {
		block := contentBlock{Type: "tool_use", ID: call.ID, Name: call.Name}
		if call.Arguments != "" {
			block.Input = json.RawMessage(call.Arguments)
		} else {
			block.Input = json.RawMessage("{}")
		}
		param.Content = append(param.Content, block)
	}
	return param
}

// encodeToolResults maps a tool turn onto a user message of tool_result
// blocks, per the Messages API shape.
func encodeToolResults(msg core.Message) messageParam {
	param := messageParam{Role: "user"}
	for _, result := range msg.ToolResults {
		param.Content = append(param.Content, contentBlock{
			Type:      "tool_result",
			ToolUseID: result.ID,
			Content:   result.Result,
		})
	}
	return param
}

// decodeResponse maps a blocking message response onto the normalized
// shape: one choice carrying the concatenated text and any tool calls.
func decodeResponse(resp messageResponse) *chat.Completion {
	choice := chat.Choice{
		Role:         resp.Role,
		FinishReason: resp.StopReason,
	}

	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			choice.ToolCalls = append(choice.ToolCalls, core.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}
	choice.Content = text.String()

	out := &chat.Completion{
		ID:      resp.ID,
		Model:   resp.Model,
		Choices: []chat.Choice{choice},
	}
	if resp.Usage != nil {
		out.Usage = &core.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}
	return out
}
