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

package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"

	"github.com/patchy-bot/patchy/internal/dispatch"
	"github.com/patchy-bot/patchy/internal/event"
	"github.com/patchy-bot/patchy/internal/metrics"
	"github.com/patchy-bot/patchy/internal/render"
)

// maxBodySize bounds inbound payloads. Every event this system renders
// fits well under a mebibyte.
const maxBodySize = 1 << 20

// Deliverer sends a rendered notification to the destination channel.
type Deliverer interface {
	Deliver(ctx context.Context, n render.Notification) dispatch.Outcome
}

// Server handles GitHub webhook requests: it verifies signatures,
// classifies events, renders notifications, and hands them to the
// Deliverer. Each request is processed independently; the only shared
// state is read-only configuration.
type Server struct {
	addr      string
	port      int
	secret    string
	deliverer Deliverer
	logger    *zap.Logger
	metrics   metrics.Sink
	promH     http.Handler
	server    *http.Server
}

// NewServer creates a webhook server.
func NewServer(addr string, port int, secret string, deliverer Deliverer, logger *zap.Logger) *Server {
	return &Server{
		addr:      addr,
		port:      port,
		secret:    secret,
		deliverer: deliverer,
		logger:    logger,
		metrics:   metrics.NewNoopSink(),
	}
}

// WithMetrics attaches a metrics sink.
func (s *Server) WithMetrics(sink metrics.Sink) *Server {
	s.metrics = sink
	return s
}

// WithMetricsHandler mounts h at /metrics.
func (s *Server) WithMetricsHandler(h http.Handler) *Server {
	s.promH = h
	return s
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleRoot)
	if s.promH != nil {
		mux.Handle("/metrics", s.promH)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.addr, s.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting webhook server", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down webhook server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "patchy",
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "patchy is running",
		"status":  "healthy",
	})
}

// handleWebhook orchestrates one inbound delivery: verify, classify,
// render, deliver. Downstream delivery failures still acknowledge the
// webhook with 200 — GitHub's view of the delivery is decoupled from the
// chat backend's health, otherwise an unrelated outage triggers
// source-side retry storms.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	rec := &responseRecorder{ResponseWriter: w}
	eventType := github.WebHookType(r)
	deliveryID := github.DeliveryID(r)
	logger := s.logger.With(
		zap.String("event", eventType),
		zap.String("delivery", deliveryID),
	)

	// An internal fault must never leak a broken response to GitHub; the
	// sender always gets a prompt, well-formed acknowledgment.
	defer func() {
		if p := recover(); p != nil {
			logger.Error("panic while processing webhook", zap.Any("panic", p))
			if !rec.wrote {
				writeJSON(rec, http.StatusOK, map[string]string{"message": "event processed"})
			}
		}
	}()

	if r.Method != http.MethodPost {
		http.Error(rec, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(rec, r.Body, maxBodySize)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("failed to read request body", zap.Error(err))
		writeJSON(rec, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}
	defer r.Body.Close()

	if !VerifySignature(payload, r.Header.Get("X-Hub-Signature-256"), s.secret) {
		logger.Warn("invalid webhook signature")
		s.metrics.SignatureRejected()
		writeJSON(rec, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		return
	}

	s.metrics.EventReceived(metricLabel(eventType))

	ev, err := event.Classify(eventType, payload)
	if err != nil {
		if errors.Is(err, event.ErrMalformedPayload) {
			logger.Warn("malformed payload", zap.Error(err))
			writeJSON(rec, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
			return
		}
		logger.Info("event ignored", zap.Error(err))
		s.metrics.EventUnsupported(metricLabel(eventType))
		writeJSON(rec, http.StatusOK, map[string]string{"message": "event ignored"})
		return
	}

	notification := render.Render(ev)

	outcome := s.deliverer.Deliver(r.Context(), notification)
	if !outcome.Delivered() {
		// Surfaced through logs and metrics only; the webhook protocol
		// does not represent downstream delivery status.
		logger.Error("notification delivery failed",
			zap.String("status", string(outcome.Status)),
			zap.Int("attempts", outcome.Attempts),
			zap.Int("status_code", outcome.StatusCode),
			zap.Error(outcome.Err))
	}

	writeJSON(rec, http.StatusOK, map[string]string{"message": "event processed"})
}

// metricLabel bounds metric label cardinality: arbitrary header values
// collapse into "other".
func metricLabel(eventType string) string {
	if event.Supported(eventType) || eventType == "ping" {
		return eventType
	}
	return "other"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// responseRecorder tracks whether a response was started, so the panic
// guard knows whether it may still write one.
type responseRecorder struct {
	http.ResponseWriter
	wrote bool
}

func (r *responseRecorder) WriteHeader(code int) {
	r.wrote = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.ResponseWriter.Write(b)
}
