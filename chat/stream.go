package chat

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/retry"
)

// Stream submits the prompt and yields one ChatResponse per chunk.
// Tool-call rounds are handled transparently: a trigger chunk is not
// yielded; instead the tools run and the follow-up stream's responses
// continue the sequence.
func (e *Engine) Stream(ctx context.Context, prompt core.Prompt) iter.Seq2[*core.ChatResponse, error] {
	return func(yield func(*core.ChatResponse, error) bool) {
		if err := core.ValidatePrompt(prompt); err != nil {
			yield(nil, err)
			return
		}
		opts := core.Merge(e.defaults, prompt.Options)
		definitions, err := e.toolDefinitions(opts)
		if err != nil {
			yield(nil, err)
			return
		}
		e.streamRound(ctx, slices.Clone(prompt.Messages), opts, definitions, 0, yield)
	}
}

// streamRound runs one streamed request plus, on a tool trigger, the
// recursive follow-up rounds. Returns false once the consumer stopped
// iterating or an error was yielded.
func (e *Engine) streamRound(ctx context.Context, conversation []core.Message, opts *core.ChatOptions, definitions []ToolDefinition, round int, yield func(*core.ChatResponse, error) bool) bool {
	req := Request{Messages: conversation, Options: opts, Tools: definitions}
	var chunks iter.Seq2[*Completion, error]
	err := retry.Execute(ctx, e.policy, func(ctx context.Context) error {
		var streamErr error
		chunks, streamErr = e.adapter.Stream(ctx, req)
		return streamErr
	})
	if err != nil {
		yield(nil, err)
		return false
	}

	session := newStreamSession()
	for chunk, chunkErr := range chunks {
		if chunkErr != nil {
			yield(nil, chunkErr)
			return false
		}

		response, trigger := session.absorb(e, chunk)
		if trigger != nil {
			// The bound gates the callbacks, not just the resubmission.
			if round >= e.maxToolRounds {
				yield(nil, core.NonTransient(fmt.Errorf("%w after %d rounds", ErrToolRoundsExceeded, e.maxToolRounds)))
				return false
			}

			// Abandoning the range stops upstream chunk consumption.
			extended, toolErr := e.executeToolCalls(ctx, conversation, trigger)
			if toolErr != nil {
				yield(nil, toolErr)
				return false
			}
			return e.streamRound(ctx, extended, opts, definitions, round+1, yield)
		}

		if response != nil && !yield(response, nil) {
			return false
		}
	}
	return true
}

// streamSession is the per-stream state the reconciler needs across
// chunks. Each Stream invocation gets its own session, so concurrent
// streams never share mutable state.
type streamSession struct {
	// roles caches the first-seen role per response id; only the first
	// chunk of a response carries it.
	roles map[string]string

	// content and calls accumulate the assistant turn across chunks so
	// a tool trigger can replay the full turn into the conversation.
	content strings.Builder
	calls   []core.ToolCall
}

func newStreamSession() *streamSession {
	return &streamSession{roles: make(map[string]string)}
}

// absorb folds one chunk into the session and reconciles it. It
// returns either the per-chunk response to emit, or the triggering
// generation when the chunk's finish reason demands a tool round.
func (s *streamSession) absorb(e *Engine, chunk *Completion) (*core.ChatResponse, *core.Generation) {
	if chunk == nil {
		return e.reconcile(nil), nil
	}

	pseudo := &Completion{
		ID:      chunk.ID,
		Model:   chunk.Model,
		Created: chunk.Created,
		Choices: make([]Choice, len(chunk.Choices)),
		Usage:   chunk.Usage,
	}
	for i, choice := range chunk.Choices {
		if choice.Role != "" {
			if _, seen := s.roles[chunk.ID]; !seen {
				s.roles[chunk.ID] = choice.Role
			}
		}
		choice.Role = s.roles[chunk.ID]
		pseudo.Choices[i] = choice
	}

	var finishReason string
	if len(pseudo.Choices) > 0 {
		first := pseudo.Choices[0]
		s.content.WriteString(first.Content)
		s.mergeToolCalls(first.ToolCalls)
		finishReason = first.FinishReason

		// Usage belongs on the terminal chunk only. A choice-less chunk
		// is a trailing usage frame and passes through untouched.
		if finishReason == "" {
			pseudo.Usage = nil
		}
	}

	if len(s.calls) > 0 && slices.Contains(e.adapter.ToolCallTriggers(), finishReason) {
		return nil, &core.Generation{
			Message: core.NewAssistantMessage(s.content.String(), s.calls...),
			Metadata: core.GenerationMetadata{
				ID:           chunk.ID,
				Role:         s.roles[chunk.ID],
				FinishReason: finishReason,
			},
		}
	}

	return e.reconcile(pseudo), nil
}

// mergeToolCalls stitches tool-call deltas together: a delta with an
// id starts a new call, an id-less delta appends its argument fragment
// to the call in progress.
func (s *streamSession) mergeToolCalls(deltas []core.ToolCall) {
	for _, delta := range deltas {
		if delta.ID != "" {
			s.calls = append(s.calls, delta)
			continue
		}
		if len(s.calls) == 0 {
			s.calls = append(s.calls, delta)
			continue
		}
		last := &s.calls[len(s.calls)-1]
		if delta.Name != "" && last.Name == "" {
			last.Name = delta.Name
		}
		last.Arguments += delta.Arguments
	}
}
