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


// Package tools provides caller-registered tool callbacks that chat
// models may invoke mid-conversation.
//
// A Callback is a named capability with a description and a JSON input
// schema; the chat engine looks callbacks up in a Registry by the name
// the model requested and feeds the serialized arguments through Call.
// Looking up an unregistered name is a precondition failure, never a
// retryable error: a model asking for a tool the caller did not enable
// indicates a wiring bug.
package tools
