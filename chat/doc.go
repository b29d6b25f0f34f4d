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


// Package chat implements the provider-agnostic chat engine.
//
// One Engine serves every provider. The parts that differ between
// vendors, request mapping, response mapping, streaming transport and
// the finish reasons that signal a pending tool invocation, live behind
// the small Adapter interface implemented once per provider. Everything
// that used to be duplicated across adapters, option merging, response
// reconciliation, the tool-call loop and retry, lives here exactly
// once.
//
// # Call flow
//
// Call merges the prompt's options over the engine defaults, submits
// the request through the retry layer, and reconciles the provider's
// completion into a core.ChatResponse. When a generation's finish
// reason is in the adapter's tool-call trigger set and the generation
// carries tool calls, the engine executes each call through the tool
// registry, appends the assistant turn and a tool-result turn to the
// conversation, and resubmits with the same options. Rounds are
// bounded by MaxToolRounds; exceeding the bound is fatal.
//
// # Streaming
//
// Stream returns a lazy, forward-only iter.Seq2. Breaking out of the
// range loop stops upstream chunk consumption; no chunks are fetched
// after that. Each stream carries its own session state: the role seen
// on the first chunk of a response id is cached and applied to later
// chunks of the same id, and tool-call argument deltas are stitched
// together until a trigger finish reason arrives, at which point the
// engine runs the tool loop and splices the follow-up stream in place
// of the trigger chunk.
package chat
