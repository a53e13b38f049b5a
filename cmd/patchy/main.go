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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/patchy-bot/patchy/internal/config"
	"github.com/patchy-bot/patchy/internal/discord"
	"github.com/patchy-bot/patchy/internal/dispatch"
	"github.com/patchy-bot/patchy/internal/metrics"
	"github.com/patchy-bot/patchy/internal/render"
	"github.com/patchy-bot/patchy/internal/webhook"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "patchy",
		Short: "Forward GitHub webhook events to a Discord channel",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSignals(serve)
		},
	}

	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry := prometheus.NewRegistry()
	sink := metrics.NewPrometheusSink(registry, logger)

	client := discord.NewClient(cfg.DiscordToken)
	dispatcher := dispatch.New(client, cfg.DiscordChannelID, logger).WithMetrics(sink)

	server := webhook.NewServer(cfg.Host, cfg.Port, cfg.GitHubWebhookSecret, dispatcher, logger).
		WithMetrics(sink).
		WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Announce the bot in the destination channel; failures are logged
	// inside the dispatcher and never block startup.
	go func() {
		startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		dispatcher.Deliver(startupCtx, startupNotification())
	}()

	return server.Start(ctx)
}

func startupNotification() render.Notification {
	return render.Notification{
		Title: "Patchy is online",
		Color: 0x00ff00,
		Fields: []render.Field{
			{Name: "Status", Value: "Connected and ready to receive GitHub webhook notifications"},
		},
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// runWithSignals runs fn until it returns or the process receives
// SIGINT/SIGTERM, in which case the context is cancelled and fn is given
// a chance to shut down cleanly.
func runWithSignals(fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- fn(ctx)
	}()

	select {
	case <-sigCh:
		cancel()
		return <-errCh
	case err := <-errCh:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}
