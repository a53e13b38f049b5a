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

// Package webhook provides the GitHub webhook ingress for Patchy.
//
// This package implements an HTTP server that receives GitHub webhook
// events, authenticates them, and drives the classify/render/deliver
// pipeline for each request.
//
// Webhook Security:
//
// All webhook requests must include a valid X-Hub-Signature-256 header
// containing an HMAC-SHA256 signature computed over the raw body with the
// shared webhook secret. Requests with invalid or missing signatures are
// rejected with HTTP 401 before any payload processing.
//
// Response Contract:
//
// The webhook sender's view of success is decoupled from chat delivery:
//   - 401: signature verification failed
//   - 400: body is not structurally valid JSON (or unreadable/oversized)
//   - 200: everything else — processed, intentionally ignored
//     (unsupported or ping events), or processed with a downstream
//     delivery failure that is surfaced only through logs and metrics
//
// Returning non-2xx for downstream failures would make GitHub disable or
// retry-storm the hook over an unrelated chat outage.
//
// Example usage:
//
//	server := webhook.NewServer("0.0.0.0", 8000, secret, dispatcher, logger)
//	if err := server.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package webhook
