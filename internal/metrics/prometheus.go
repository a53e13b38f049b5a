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

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// PrometheusSink implements Sink using the Prometheus client library.
// Registration errors are logged, never propagated: a metrics failure
// must not take down the webhook pipeline.
type PrometheusSink struct {
	logger *zap.Logger

	eventsReceivedTotal    *prometheus.CounterVec
	eventsUnsupportedTotal *prometheus.CounterVec
	signatureRejectedTotal prometheus.Counter

	deliveryAttemptsTotal *prometheus.CounterVec
	deliveryOutcomesTotal *prometheus.CounterVec
	deliveryDuration      prometheus.Histogram
	retryAttemptsTotal    prometheus.Counter
}

// NewPrometheusSink creates a Prometheus metrics sink registered against
// reg.
func NewPrometheusSink(reg prometheus.Registerer, logger *zap.Logger) *PrometheusSink {
	s := &PrometheusSink{logger: logger}

	s.eventsReceivedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "patchy_events_received_total",
		Help: "Total webhook events received, by event type.",
	}, []string{"event"})
	s.eventsUnsupportedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "patchy_events_unsupported_total",
		Help: "Total webhook events acknowledged without a notification, by event type.",
	}, []string{"event"})
	s.signatureRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "patchy_signature_rejections_total",
		Help: "Total webhook requests rejected for an invalid or missing signature.",
	})
	s.deliveryAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "patchy_delivery_attempts_total",
		Help: "Total chat delivery attempts, by attempt number and status class.",
	}, []string{"attempt", "status_class"})
	s.deliveryOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "patchy_delivery_outcomes_total",
		Help: "Total terminal delivery outcomes.",
	}, []string{"outcome"})
	s.deliveryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "patchy_delivery_attempt_duration_seconds",
		Help:    "Duration of individual chat delivery attempts in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
	s.retryAttemptsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "patchy_delivery_retries_total",
		Help: "Total chat delivery retries.",
	})

	s.register(reg, s.eventsReceivedTotal, "patchy_events_received_total")
	s.register(reg, s.eventsUnsupportedTotal, "patchy_events_unsupported_total")
	s.register(reg, s.signatureRejectedTotal, "patchy_signature_rejections_total")
	s.register(reg, s.deliveryAttemptsTotal, "patchy_delivery_attempts_total")
	s.register(reg, s.deliveryOutcomesTotal, "patchy_delivery_outcomes_total")
	s.register(reg, s.deliveryDuration, "patchy_delivery_attempt_duration_seconds")
	s.register(reg, s.retryAttemptsTotal, "patchy_delivery_retries_total")

	return s
}

func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		s.logger.Warn("metric registration failed", zap.String("metric", name), zap.Error(err))
	}
}

func (s *PrometheusSink) EventReceived(event string) {
	s.eventsReceivedTotal.WithLabelValues(event).Inc()
}

func (s *PrometheusSink) EventUnsupported(event string) {
	s.eventsUnsupportedTotal.WithLabelValues(event).Inc()
}

func (s *PrometheusSink) SignatureRejected() {
	s.signatureRejectedTotal.Inc()
}

func (s *PrometheusSink) DeliveryAttemptCompleted(attempt int, statusClass string, duration time.Duration) {
	s.deliveryAttemptsTotal.WithLabelValues(strconv.Itoa(attempt), statusClass).Inc()
	s.deliveryDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) DeliveryOutcome(outcome string) {
	s.deliveryOutcomesTotal.WithLabelValues(outcome).Inc()
}

func (s *PrometheusSink) RetryAttempt(retryable bool) {
	s.retryAttemptsTotal.Inc()
}
