package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/compass/internal/anthropic"
	"github.com/MikeSquared-Agency/compass/internal/api"
	"github.com/MikeSquared-Agency/compass/internal/coach"
	"github.com/MikeSquared-Agency/compass/internal/config"
	"github.com/MikeSquared-Agency/compass/internal/extractor"
	"github.com/MikeSquared-Agency/compass/internal/hermes"
	"github.com/MikeSquared-Agency/compass/internal/processor"
	"github.com/MikeSquared-Agency/compass/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("compass starting", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// Text generation is optional: without a key every reply is a fallback.
	var gen coach.Generator
	if cfg.AnthropicAPIKey != "" {
		gen = anthropic.NewClient(cfg.AnthropicAPIKey, cfg.CoachModel)
		slog.Info("anthropic client ready", "model", cfg.CoachModel)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set, coach will use fallback replies")
	}

	ext, err := extractor.New(slog.Default())
	if err != nil {
		slog.Error("failed to load extraction patterns", "error", err)
		os.Exit(1)
	}
	responder := coach.New(gen, ext, cfg.CoachMaxTokens, slog.Default())

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	proc := processor.New(db, responder, ext, hermesClient, cfg.CandidatePoolLimit, slog.Default())

	if err := hermesClient.Subscribe(hermes.SubjectExtractRequest, proc.HandleExtractRequest); err != nil {
		slog.Error("failed to subscribe to extract requests", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, proc, ext, slog.Default())
	srv.AddHealthCheck("postgres", db.Ping)
	srv.AddHealthCheck("nats", func(context.Context) error {
		if !hermesClient.Connected() {
			return errors.New("not connected")
		}
		return nil
	})
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	if err := hermesClient.Publish("swarm.agent.compass.registered", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
		"coach":     gen != nil,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("compass ready", "port", cfg.Port)

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		if err := <-errCh; err != nil {
			slog.Error("HTTP shutdown error", "error", err)
		}
	case err := <-errCh:
		slog.Error("HTTP server error", "error", err)
	}
	slog.Info("compass stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
