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
	"time"

	"go.uber.org/zap"

	"github.com/patchy-bot/patchy/internal/metrics"
	"github.com/patchy-bot/patchy/internal/render"
)

// Status summarizes how a delivery ended.
type Status string

const (
	// StatusDelivered means the backend confirmed exactly one message.
	StatusDelivered Status = "delivered"
	// StatusFailed means the backend rejected the message with a
	// non-retryable error (permissions, bad channel).
	StatusFailed Status = "failed"
	// StatusAbandoned means the attempt budget was exhausted or the
	// context was cancelled before a confirmed delivery.
	StatusAbandoned Status = "abandoned"
)

// Outcome is the terminal result of a delivery, after retries.
type Outcome struct {
	Status     Status
	Attempts   int
	StatusCode int
	Err        error
}

// Delivered reports whether exactly one message was confirmed sent.
func (o Outcome) Delivered() bool { return o.Status == StatusDelivered }

// Dispatcher sends rendered notifications to the chat backend, retrying
// transient failures with backoff. It holds no per-request state and is
// safe for concurrent use; the backoff sleep suspends only the calling
// request.
type Dispatcher struct {
	sender    Sender
	channelID string
	policy    Policy
	logger    *zap.Logger
	metrics   metrics.Sink

	// sleep is injectable so retry timing is testable without real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Dispatcher delivering to a single destination channel.
func New(sender Sender, channelID string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender:    sender,
		channelID: channelID,
		policy:    DefaultPolicy,
		logger:    logger,
		metrics:   metrics.NewNoopSink(),
		sleep:     sleepContext,
	}
}

// WithPolicy overrides the retry policy.
func (d *Dispatcher) WithPolicy(p Policy) *Dispatcher {
	d.policy = p
	return d
}

// WithMetrics attaches a metrics sink.
func (d *Dispatcher) WithMetrics(sink metrics.Sink) *Dispatcher {
	d.metrics = sink
	return d
}

// Deliver attempts to send the notification, retrying rate-limited and
// transient failures up to the policy's attempt budget. Rate-limit
// responses are retried after the backend's advised delay; other
// retryable failures use exponential backoff. Retries happen only on
// confirmed non-success, so a delivered message is never duplicated.
func (d *Dispatcher) Deliver(ctx context.Context, n render.Notification) Outcome {
	var last Result

	for attempt := 1; attempt <= d.policy.MaxAttempts; attempt++ {
		start := time.Now()
		last = d.sender.Send(ctx, d.channelID, n)
		d.metrics.DeliveryAttemptCompleted(attempt, metrics.ClassifyStatus(last.StatusCode, last.Err), time.Since(start))

		if last.Success() {
			d.logger.Info("notification delivered",
				zap.String("title", n.Title),
				zap.Int("attempt", attempt))
			d.metrics.DeliveryOutcome(metrics.OutcomeSuccess)
			return Outcome{Status: StatusDelivered, Attempts: attempt, StatusCode: last.StatusCode}
		}

		if !last.Retryable() {
			d.logger.Error("notification rejected",
				zap.String("title", n.Title),
				zap.Int("status", last.StatusCode),
				zap.Error(last.Err))
			d.metrics.DeliveryOutcome(metrics.OutcomeFailed)
			return Outcome{Status: StatusFailed, Attempts: attempt, StatusCode: last.StatusCode, Err: last.Err}
		}

		d.metrics.RetryAttempt(true)
		if attempt == d.policy.MaxAttempts {
			break
		}

		delay := d.policy.Delay(attempt)
		if last.RateLimited() && last.RetryAfter > 0 {
			delay = last.RetryAfter
		}
		d.logger.Warn("delivery attempt failed, backing off",
			zap.Int("attempt", attempt),
			zap.Int("status", last.StatusCode),
			zap.Duration("delay", delay),
			zap.Error(last.Err))

		if err := d.sleep(ctx, delay); err != nil {
			d.metrics.DeliveryOutcome(metrics.OutcomeAbandoned)
			return Outcome{Status: StatusAbandoned, Attempts: attempt, StatusCode: last.StatusCode, Err: err}
		}
	}

	d.logger.Error("notification abandoned after retries",
		zap.String("title", n.Title),
		zap.Int("attempts", d.policy.MaxAttempts),
		zap.Int("status", last.StatusCode),
		zap.Error(last.Err))
	d.metrics.DeliveryOutcome(metrics.OutcomeAbandoned)
	return Outcome{Status: StatusAbandoned, Attempts: d.policy.MaxAttempts, StatusCode: last.StatusCode, Err: last.Err}
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
