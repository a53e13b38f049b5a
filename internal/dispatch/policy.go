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

import "time"

// Policy defines the retry behavior for delivery attempts. Delay is a
// pure function so backoff can be tested without real time.
type Policy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

// DefaultPolicy gives four attempts, doubling from half a second and
// capped at thirty seconds.
var DefaultPolicy = Policy{
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    30 * time.Second,
	MaxAttempts: 4,
}

// Delay returns the backoff before the attempt after the given one:
// BaseDelay doubled per completed attempt, capped at MaxDelay. attempt
// is 1-based.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
