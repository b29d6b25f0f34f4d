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


// Package retry executes outbound provider calls under a configurable
// retry policy with exponential backoff.
//
// Classification follows the module's error taxonomy: transient
// failures (transport errors, 5xx, allow-listed status codes) are
// retried until the policy is exhausted; non-transient and
// precondition failures stop immediately. Exhaustion surfaces a
// core.NonTransientError wrapping the last attempt's error.
package retry
