// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package embedding defines the text embedding surface shared by all
// providers.
package embedding

import (
	"context"
	"errors"

	"github.com/poiesic/modelkit/core"
)

// ErrBatchTooLarge indicates an embedding batch over the provider's
// configured ceiling. It is a precondition failure raised before any
// network call, never a retryable error.
var ErrBatchTooLarge = errors.New("embedding batch exceeds provider ceiling")

// Embedder generates vector embeddings from text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText generates an embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for a batch of texts, in input
	// order. The batch must respect the provider's item ceiling.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CheckBatch validates a batch size against a provider ceiling before
// submission. A limit of zero or less means unbounded.
func CheckBatch(limit, size int) error {
	if limit > 0 && size > limit {
		return core.Preconditionf("%w: %d items, ceiling %d", ErrBatchTooLarge, size, limit)
	}
	return nil
}
