package core

import "slices"

// ChatOptions is the per-call configuration bag for chat models.
// Pointer fields distinguish "unset" from an explicit zero value: unset
// fields are omitted from the outbound payload so the provider applies
// its own default. Providers ignore fields they do not support.
type ChatOptions struct {
	Model            string
	Temperature      *float64
	TopP             *float64
	MaxTokens        *int
	StopSequences    []string
	PresencePenalty  *float64
	FrequencyPenalty *float64
	// Tools names the registered tool callbacks the model may invoke.
	Tools []string
}

// Clone returns a deep copy. Slice fields are copied so the original
// options can never be mutated through the clone.
func (o *ChatOptions) Clone() *ChatOptions {
	if o == nil {
		return nil
	}
	c := &ChatOptions{
		Model:            o.Model,
		Temperature:      copyPtr(o.Temperature),
		TopP:             copyPtr(o.TopP),
		MaxTokens:        copyPtr(o.MaxTokens),
		StopSequences:    slices.Clone(o.StopSequences),
		PresencePenalty:  copyPtr(o.PresencePenalty),
		FrequencyPenalty: copyPtr(o.FrequencyPenalty),
		Tools:            slices.Clone(o.Tools),
	}
	return c
}

// Merge combines override options on top of base. Override fields win
// whenever they are set; the Tools lists are unioned with base order
// preserved and duplicates dropped. Neither argument is mutated.
func Merge(base, override *ChatOptions) *ChatOptions {
	if base == nil && override == nil {
		return &ChatOptions{}
	}
	if base == nil {
		return override.Clone()
	}
	merged := base.Clone()
	if override == nil {
		return merged
	}

	if override.Model != "" {
		merged.Model = override.Model
	}
	if override.Temperature != nil {
		merged.Temperature = copyPtr(override.Temperature)
	}
	if override.TopP != nil {
		merged.TopP = copyPtr(override.TopP)
	}
	if override.MaxTokens != nil {
		merged.MaxTokens = copyPtr(override.MaxTokens)
	}
	if len(override.StopSequences) > 0 {
		merged.StopSequences = slices.Clone(override.StopSequences)
	}
	if override.PresencePenalty != nil {
		merged.PresencePenalty = copyPtr(override.PresencePenalty)
	}
	if override.FrequencyPenalty != nil {
		merged.FrequencyPenalty = copyPtr(override.FrequencyPenalty)
	}
	merged.Tools = unionStrings(merged.Tools, override.Tools)
	return merged
}

// unionStrings appends elements of b not already present in a,
// preserving first-seen order.
func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	out := slices.Clone(a)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Float64 returns a pointer to v, for building ChatOptions literals.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v, for building ChatOptions literals.
func Int(v int) *int { return &v }
