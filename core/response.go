package core

// Usage reports the token accounting a provider attached to a response.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// GenerationMetadata describes one candidate completion.
type GenerationMetadata struct {
	// ID is the provider message id the generation belongs to.
	ID string
	// Role is the author role the provider reported, if any.
	Role string
	// FinishReason is the provider code for why generation stopped.
	FinishReason string
}

// Generation is one candidate completion within a ChatResponse.
// Its Message always carries RoleAssistant.
type Generation struct {
	Message  Message
	Metadata GenerationMetadata
}

// ResponseMetadata carries response-level provider metadata.
type ResponseMetadata struct {
	ID      string
	Model   string
	Created int64
	Usage   *Usage
}

// ChatResponse is the normalized result of a chat model call, one
// Generation per candidate completion. A response with zero generations
// is valid: it represents an absent completion body.
type ChatResponse struct {
	Generations []Generation
	Metadata    ResponseMetadata
}

// Generation returns the first generation, or nil when the response is
// empty.
func (r *ChatResponse) Generation() *Generation {
	if r == nil || len(r.Generations) == 0 {
		return nil
	}
	return &r.Generations[0]
}

// Text returns the content of the first generation, or "".
func (r *ChatResponse) Text() string {
	if g := r.Generation(); g != nil {
		return g.Message.Content
	}
	return ""
}

// Embedding is a single embedding vector with its position in the
// request batch.
type Embedding struct {
	Index  int
	Vector []float32
}

// EmbeddingResponse groups the embeddings for one request with
// provider metadata.
type EmbeddingResponse struct {
	Embeddings []Embedding
	Model      string
	Usage      *Usage
}
