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

// Package provider builds chat models and embedders from explicit
// configuration.
//
// The factory dispatches on Config.Provider:
//
//   - "openai": the OpenAI chat completions and embeddings APIs, or
//     any OpenAI-compatible endpoint via BaseURL
//   - "anthropic": the Anthropic Messages API (chat only)
//   - "local": local OpenAI-compatible services through langchaingo
//
// Adapters live in sub-packages and can be constructed directly when
// the factory indirection is not wanted. The mock sub-package holds
// test doubles.
package provider
