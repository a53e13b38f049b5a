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

// Package event classifies verified GitHub webhook payloads into typed
// events for rendering.
//
// Classification matches the X-GitHub-Event header against a closed,
// case-sensitive set of supported names, decodes the body through
// go-github's typed webhook structs, and validates the fields rendering
// depends on (repository full name, actor login, and a per-kind
// identifier such as the push ref or issue number).
//
// Failure handling is deliberately soft: anything outside the supported
// set — including ping events and payloads whose shape does not decode —
// yields ErrUnsupportedEvent so the caller can acknowledge the delivery
// without producing a notification. Only structurally invalid JSON yields
// ErrMalformedPayload.
package event
