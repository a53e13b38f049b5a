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

// Package render converts typed GitHub events into backend-agnostic
// notifications: a title, a display color, an ordered field list, and an
// optional link.
//
// Rendering is pure and deterministic. Free-text fields (commit messages,
// PR and release bodies, comments) are truncated per field with an
// ellipsis marker; push events render at most MaxCommitFields per-commit
// fields followed by a "+N more" field.
package render
