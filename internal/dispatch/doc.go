// Copyright 2025 The Patchy Authors
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

// Package dispatch delivers rendered notifications to the chat backend
// with bounded retries.
//
// The Sender interface isolates the backend call so the dispatcher can be
// tested against a fake that simulates rate limits and outages. Backoff
// is a pure Policy (base delay, doubling, cap, attempt budget); the
// dispatcher honors a rate-limited response's advised retry-after over
// the computed backoff. Non-retryable results (permission or channel
// errors) fail immediately. A delivery's total duration is bounded by the
// policy, and retries occur only on confirmed non-success so a delivered
// message is never duplicated.
package dispatch
