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


package core

import "fmt"

// ValidatePrompt validates a prompt before submission.
//
// Rules:
//   - at least one message
//   - every message has a recognized role
//   - system and user messages have non-empty content
//   - every tool result references a tool call id issued by an earlier
//     assistant message
//
// Violations are programmer errors: the returned error wraps
// PreconditionError and must not be retried.
func ValidatePrompt(p Prompt) error {
	if len(p.Messages) == 0 {
		return Precondition(ErrEmptyPrompt)
	}

	issued := make(map[string]string) // tool call id -> function name
	for i, msg := range p.Messages {
		switch msg.Role {
		case RoleSystem, RoleUser:
			if msg.Content == "" && len(msg.Media) == 0 {
				return Precondition(fmt.Errorf("message %d: %w", i, ErrEmptyContent))
			}
		case RoleAssistant:
			for _, call := range msg.ToolCalls {
				issued[call.ID] = call.Name
			}
		case RoleTool:
			for _, result := range msg.ToolResults {
				name, ok := issued[result.ID]
				if !ok || name != result.Name {
					return Precondition(fmt.Errorf("message %d: call %q/%q: %w",
						i, result.ID, result.Name, ErrOrphanToolResult))
				}
			}
		default:
			return Precondition(fmt.Errorf("message %d: role %q: %w", i, msg.Role, ErrInvalidRole))
		}
	}
	return nil
}
