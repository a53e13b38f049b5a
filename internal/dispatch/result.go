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

package dispatch

import (
	"context"
	"net/http"
	"time"

	"github.com/patchy-bot/patchy/internal/render"
)

// Sender delivers one notification to the chat backend. Implementations
// must not retry internally; the dispatcher owns the retry policy.
type Sender interface {
	Send(ctx context.Context, channelID string, n render.Notification) Result
}

// Result is the outcome of a single send attempt. Err is set for
// transport-level failures (connection refused, timeout); StatusCode is
// set when the backend responded. RetryAfter carries the backend's
// advised delay on rate-limit responses.
type Result struct {
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

// Success reports a confirmed delivery.
func (r Result) Success() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Retryable reports whether another attempt may succeed: transport
// errors, rate limiting, and backend 5xx responses.
func (r Result) Retryable() bool {
	if r.Err != nil {
		return true
	}
	if r.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return r.StatusCode >= 500
}

// RateLimited reports whether the backend asked us to slow down.
func (r Result) RateLimited() bool {
	return r.StatusCode == http.StatusTooManyRequests
}
