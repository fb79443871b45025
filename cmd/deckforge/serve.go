package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/generate"
	"github.com/deckforge/deckforge/llm"
	"github.com/deckforge/deckforge/ratelimit"
	"github.com/deckforge/deckforge/server"
	"github.com/deckforge/deckforge/stats"
	"github.com/deckforge/deckforge/workflow"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the presentation HTTP service",
		Long: `Serve exposes the pipeline over HTTP: POST /v1/presentations generates
a deck, GET /healthz reports liveness and GET /metrics exports prometheus
counters. All runs share one rate-limit window against the upstream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

func runServe(configPath, addr string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	limiter, err := ratelimit.NewManager(cfg.RateLimiter())
	if err != nil {
		return fmt.Errorf("create rate limiter: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics := stats.NewMetrics(registry)

	client := llm.NewClient(cfg.Endpoint(), llm.WithTimeout(cfg.Model.Timeout))
	coord := workflow.NewCoordinator(client, limiter,
		workflow.WithMetrics(metrics),
		workflow.WithGatewayOptions(generate.WithTemperature(cfg.Model.Temperature)))

	srv := &http.Server{
		Addr:    addr,
		Handler: server.New(coord, server.WithGatherer(registry)).Router(),
	}

	go func() {
		slog.Info("Deckforge serving",
			"addr", addr,
			"provider", cfg.Model.Provider,
			"model", cfg.Model.Name,
			"rate_capacity", cfg.RateLimit.Capacity,
			"rate_window", cfg.RateLimit.Window)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
		}
	}()

	signalCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("Deckforge shutdown complete")
	return nil
}
