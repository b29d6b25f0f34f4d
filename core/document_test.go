package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentID_Deterministic(t *testing.T) {
	a := DocumentID("the eiffel tower is in paris")
	b := DocumentID("the eiffel tower is in paris")
	c := DocumentID("the louvre is in paris")

	assert.Equal(t, a, b, "identical content produces identical IDs")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16, "64-bit hash, hex encoded")
}

func TestNewDocument_UniqueIDs(t *testing.T) {
	a := NewDocument("same content", nil)
	b := NewDocument("same content", nil)
	assert.NotEqual(t, a.ID, b.ID)
}
