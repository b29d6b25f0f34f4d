package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/retry"
	"github.com/poiesic/modelkit/tools"
)

const defaultMaxToolRounds = 10

var (
	// ErrNilAdapter indicates an engine constructed without an adapter.
	ErrNilAdapter = errors.New("adapter is nil")

	// ErrToolRoundsExceeded indicates the model kept requesting tool
	// invocations past the configured round bound.
	ErrToolRoundsExceeded = errors.New("tool call rounds exceeded")
)

// Engine implements Model on top of a provider Adapter.
type Engine struct {
	adapter       Adapter
	registry      *tools.Registry
	defaults      *core.ChatOptions
	policy        retry.Policy
	maxToolRounds int
	logger        *slog.Logger
}

var _ Model = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine) error

// WithDefaults sets the default chat options merged under every
// prompt's options.
func WithDefaults(opts *core.ChatOptions) Option {
	return func(e *Engine) error {
		e.defaults = opts.Clone()
		return nil
	}
}

// WithRegistry sets the tool registry consulted when the model
// requests tool invocations.
func WithRegistry(reg *tools.Registry) Option {
	return func(e *Engine) error {
		e.registry = reg
		return nil
	}
}

// WithRetryPolicy sets the retry policy for outbound provider calls.
// Default is retry.DefaultPolicy().
func WithRetryPolicy(policy retry.Policy) Option {
	return func(e *Engine) error {
		e.policy = policy
		return nil
	}
}

// WithMaxToolRounds bounds the number of tool-call rounds per Call or
// Stream invocation. Default is 10.
func WithMaxToolRounds(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			n = 1
		}
		e.maxToolRounds = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates an engine for the given adapter.
func NewEngine(adapter Adapter, opts ...Option) (*Engine, error) {
	if adapter == nil {
		return nil, core.Precondition(ErrNilAdapter)
	}

	e := &Engine{
		adapter:       adapter,
		policy:        retry.DefaultPolicy(),
		maxToolRounds: defaultMaxToolRounds,
		logger:        slog.Default().With("component", "chat-engine", "provider", adapter.Provider()),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Call submits the prompt and blocks until the terminal response.
func (e *Engine) Call(ctx context.Context, prompt core.Prompt) (*core.ChatResponse, error) {
	if err := core.ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	opts := core.Merge(e.defaults, prompt.Options)
	definitions, err := e.toolDefinitions(opts)
	if err != nil {
		return nil, err
	}
	conversation := slices.Clone(prompt.Messages)

	for round := 0; ; round++ {
		req := Request{Messages: conversation, Options: opts, Tools: definitions}
		var completion *Completion
		err := retry.Execute(ctx, e.policy, func(ctx context.Context) error {
			var callErr error
			completion, callErr = e.adapter.Complete(ctx, req)
			return callErr
		})
		if err != nil {
			return nil, err
		}

		response := e.reconcile(completion)
		trigger := e.triggeredGeneration(response)
		if trigger == nil {
			return response, nil
		}

		// The bound gates the callbacks, not just the resubmission: no
		// tool code runs past round maxToolRounds.
		if round >= e.maxToolRounds {
			return nil, core.NonTransient(fmt.Errorf("%w after %d rounds", ErrToolRoundsExceeded, e.maxToolRounds))
		}

		conversation, err = e.executeToolCalls(ctx, conversation, trigger)
		if err != nil {
			return nil, err
		}
	}
}

// toolDefinitions resolves the option's tool names against the
// registry. Naming a tool without a registry, or naming an
// unregistered tool, fails fast.
func (e *Engine) toolDefinitions(opts *core.ChatOptions) ([]ToolDefinition, error) {
	if opts == nil || len(opts.Tools) == 0 {
		return nil, nil
	}
	if e.registry == nil {
		return nil, core.Preconditionf("options name tools but no registry is configured")
	}

	callbacks, err := e.registry.Resolve(opts.Tools)
	if err != nil {
		return nil, err
	}

	definitions := make([]ToolDefinition, len(callbacks))
	for i, cb := range callbacks {
		definitions[i] = ToolDefinition{
			Name:        cb.Name(),
			Description: cb.Description(),
			InputSchema: cb.InputSchema(),
		}
	}
	return definitions, nil
}

// reconcile converts a normalized completion into a ChatResponse: one
// Generation per choice. A nil completion yields an empty response and
// a logged warning, not an error.
func (e *Engine) reconcile(completion *Completion) *core.ChatResponse {
	if completion == nil {
		e.logger.Warn("no completion returned by provider")
		return &core.ChatResponse{}
	}

	generations := make([]core.Generation, 0, len(completion.Choices))
	for _, choice := range completion.Choices {
		generations = append(generations, core.Generation{
			Message: core.NewAssistantMessage(choice.Content, choice.ToolCalls...),
			Metadata: core.GenerationMetadata{
				ID:           completion.ID,
				Role:         choice.Role,
				FinishReason: choice.FinishReason,
			},
		})
	}

	return &core.ChatResponse{
		Generations: generations,
		Metadata: core.ResponseMetadata{
			ID:      completion.ID,
			Model:   completion.Model,
			Created: completion.Created,
			Usage:   completion.Usage,
		},
	}
}

// triggeredGeneration returns the first generation whose finish reason
// is in the adapter's trigger set and which actually carries tool
// calls. Requiring calls guards against providers that reuse their
// natural stop reason as a trigger.
func (e *Engine) triggeredGeneration(response *core.ChatResponse) *core.Generation {
	triggers := e.adapter.ToolCallTriggers()
	for i := range response.Generations {
		gen := &response.Generations[i]
		if len(gen.Message.ToolCalls) == 0 {
			continue
		}
		if slices.Contains(triggers, gen.Metadata.FinishReason) {
			return gen
		}
	}
	return nil
}

// executeToolCalls runs every tool call of the triggering generation
// and returns the conversation extended with the assistant turn and a
// tool-result turn. Missing registrations and callback failures are
// fatal for the whole call, never retried.
func (e *Engine) executeToolCalls(ctx context.Context, conversation []core.Message, gen *core.Generation) ([]core.Message, error) {
	if e.registry == nil {
		return nil, core.Preconditionf("model requested tools but no registry is configured")
	}

	results := make([]core.ToolResult, 0, len(gen.Message.ToolCalls))
	for _, call := range gen.Message.ToolCalls {
		callback, err := e.registry.Lookup(call.Name)
		if err != nil {
			return nil, err
		}

		e.logger.Debug("invoking tool", "tool", call.Name, "callID", call.ID)
		result, err := callback.Call(ctx, call.Arguments)
		if err != nil {
			return nil, core.NonTransient(fmt.Errorf("tool %q failed: %w", call.Name, err))
		}
		results = append(results, core.ToolResult{ID: call.ID, Name: call.Name, Result: result})
	}

	extended := slices.Clone(conversation)
	extended = append(extended, gen.Message, core.NewToolMessage(results...))
	return extended, nil
}
