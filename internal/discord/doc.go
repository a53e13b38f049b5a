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

// Package discord sends notifications to a Discord channel through the
// REST API (POST /channels/{id}/messages) with bot-token authentication.
//
// The client performs exactly one HTTP call per Send and surfaces rate
// limits (429 with a retry_after body) and errors through
// dispatch.Result, leaving retry decisions to the dispatcher.
package discord
