package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_OverrideWinsPerField(t *testing.T) {
	base := &ChatOptions{
		Model:            "base-model",
		Temperature:      Float64(0.2),
		TopP:             Float64(0.9),
		MaxTokens:        Int(256),
		StopSequences:    []string{"END"},
		PresencePenalty:  Float64(0.1),
		FrequencyPenalty: Float64(0.2),
	}
	override := &ChatOptions{
		Model:            "override-model",
		Temperature:      Float64(0.7),
		TopP:             Float64(0.5),
		MaxTokens:        Int(512),
		StopSequences:    []string{"STOP"},
		PresencePenalty:  Float64(0.3),
		FrequencyPenalty: Float64(0.4),
	}

	merged := Merge(base, override)

	assert.Equal(t, "override-model", merged.Model)
	assert.Equal(t, 0.7, *merged.Temperature)
	assert.Equal(t, 0.5, *merged.TopP)
	assert.Equal(t, 512, *merged.MaxTokens)
	assert.Equal(t, []string{"STOP"}, merged.StopSequences)
	assert.Equal(t, 0.3, *merged.PresencePenalty)
	assert.Equal(t, 0.4, *merged.FrequencyPenalty)
}

func TestMerge_UnsetFieldsFallBack(t *testing.T) {
	base := &ChatOptions{
		Model:       "base-model",
		Temperature: Float64(0.2),
		MaxTokens:   Int(128),
	}
	override := &ChatOptions{Temperature: Float64(0.9)}

	merged := Merge(base, override)

	assert.Equal(t, "base-model", merged.Model, "unset override model falls back to base")
	assert.Equal(t, 0.9, *merged.Temperature)
	assert.Equal(t, 128, *merged.MaxTokens)
	assert.Nil(t, merged.TopP, "fields unset at both levels stay unset")
}

func TestMerge_ToolUnion(t *testing.T) {
	base := &ChatOptions{Tools: []string{"weather", "clock"}}
	override := &ChatOptions{Tools: []string{"clock", "calculator"}}

	merged := Merge(base, override)

	assert.ElementsMatch(t, []string{"weather", "clock", "calculator"}, merged.Tools)
	assert.Len(t, merged.Tools, 3, "union must not contain duplicates")
}

func TestMerge_NilArguments(t *testing.T) {
	merged := Merge(nil, nil)
	require.NotNil(t, merged)

	base := &ChatOptions{Model: "m"}
	assert.Equal(t, "m", Merge(base, nil).Model)
	assert.Equal(t, "m", Merge(nil, base).Model)
}

func TestMerge_DoesNotMutateArguments(t *testing.T) {
	base := &ChatOptions{Temperature: Float64(0.2), Tools: []string{"a"}}
	override := &ChatOptions{Temperature: Float64(0.9), Tools: []string{"b"}}

	merged := Merge(base, override)
	*merged.Temperature = 0.5
	merged.Tools[0] = "mutated"

	assert.Equal(t, 0.2, *base.Temperature)
	assert.Equal(t, 0.9, *override.Temperature)
	assert.Equal(t, []string{"a"}, base.Tools)
	assert.Equal(t, []string{"b"}, override.Tools)
}

func TestMerge_Deterministic(t *testing.T) {
	base := &ChatOptions{Tools: []string{"x", "y"}}
	override := &ChatOptions{Tools: []string{"z", "x"}}

	first := Merge(base, override)
	second := Merge(base, override)

	assert.Equal(t, first, second)
}
