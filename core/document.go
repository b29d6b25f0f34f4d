package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// Document is a unit of content stored in a vector store: text, a
// free-form metadata map, and (once embedded) a vector.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
	Vector   []float32
}

// NewDocument creates a document with a random ID.
func NewDocument(content string, metadata map[string]any) Document {
	return Document{
		ID:       uuid.NewString(),
		Content:  content,
		Metadata: metadata,
	}
}

// DocumentID generates a deterministic ID from text content using
// BLAKE2b hashing, so identical content always maps to the same ID.
func DocumentID(content string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}
