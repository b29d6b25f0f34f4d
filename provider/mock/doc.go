// Package mock provides test double implementations of the model
// provider interfaces.
//
// This package contains mock implementations of chat.Adapter, chat.Model
// and embedding.Embedder for use in unit tests. The mocks allow tests to
// run without external provider dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	adapter := mock.NewAdapter()
//	engine, _ := chat.NewEngine(adapter)
//
//	// Custom behavior injection
//	embedder := mock.NewEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
//   - Embedder: returns deterministic unit vectors based on text hash
//   - Adapter: echoes the last user message as the completion
package mock
