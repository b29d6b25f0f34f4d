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


// Package core defines the provider-agnostic domain model shared by every
// part of modelkit.
//
// The central types are:
//
//   - Message / Prompt: the conversational input to a chat model call
//   - ChatOptions: the per-call configuration bag; unset fields mean
//     "let the provider apply its own default"
//   - Generation / ChatResponse: normalized model output
//   - Embedding / EmbeddingResponse: normalized embedding output
//   - Document: a unit of content stored in a vector store
//
// The package also defines the error taxonomy used across the module:
//
//   - TransientError: retryable transport or server failures
//   - NonTransientError: client errors and retry exhaustion; retrying
//     will not help
//   - PreconditionError: programmer errors (invalid arguments, missing
//     tool registrations); these fail fast and are never retried
//
// Types in this package carry no provider-specific detail. Provider
// adapters translate between these types and each vendor's wire format.
package core
