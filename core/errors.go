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

import (
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrEmptyPrompt indicates a prompt with no messages.
	ErrEmptyPrompt = errors.New("prompt has no messages")

	// ErrEmptyContent indicates a message with no content.
	ErrEmptyContent = errors.New("message content cannot be empty")

	// ErrInvalidRole indicates an unrecognized message role.
	ErrInvalidRole = errors.New("invalid message role")

	// ErrOrphanToolResult indicates a tool result that references no
	// tool call from a preceding assistant message.
	ErrOrphanToolResult = errors.New("tool result references no prior tool call")

	// ErrMissingVector indicates a document stored without an embedding.
	ErrMissingVector = errors.New("document has no embedding vector")
)

// TransientError marks a failure the retry layer may safely repeat:
// transport errors, rate limits on the allow list, server-side 5xx.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable. Returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// NonTransientError marks a failure retrying will not fix: client
// errors, auth failures, retry exhaustion.
type NonTransientError struct {
	Err error
}

func (e *NonTransientError) Error() string {
	return fmt.Sprintf("non-transient: %v", e.Err)
}

func (e *NonTransientError) Unwrap() error { return e.Err }

// NonTransient wraps err as terminal. Returns nil for a nil err.
func NonTransient(err error) error {
	if err == nil {
		return nil
	}
	return &NonTransientError{Err: err}
}

// NonTransientf is NonTransient with formatting.
func NonTransientf(format string, args ...any) error {
	return &NonTransientError{Err: fmt.Errorf(format, args...)}
}

// PreconditionError marks a programmer error: invalid arguments,
// missing tool registrations, unsupported message shapes. It fails
// fast and is never retried.
type PreconditionError struct {
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated: %v", e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// Precondition wraps err as a programmer error. Returns nil for a nil err.
func Precondition(err error) error {
	if err == nil {
		return nil
	}
	return &PreconditionError{Err: err}
}

// Preconditionf is Precondition with formatting.
func Preconditionf(format string, args ...any) error {
	return &PreconditionError{Err: fmt.Errorf(format, args...)}
}
