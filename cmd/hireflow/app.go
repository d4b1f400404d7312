package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/jonathan/hireflow/internal/config"
	"github.com/jonathan/hireflow/internal/db"
	"github.com/jonathan/hireflow/internal/history"
	"github.com/jonathan/hireflow/internal/kv"
	"github.com/jonathan/hireflow/internal/llm"
	"github.com/jonathan/hireflow/internal/rehydrate"
	"github.com/jonathan/hireflow/internal/synthesis"
	"github.com/jonathan/hireflow/internal/transport"
)

// app bundles the components shared by the commands.
type app struct {
	cfg        *config.Config
	store      *history.Store
	rehydrator *rehydrate.Rehydrator
}

// newApp loads configuration and opens the history surface.
// Callers must Close the returned app.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	surface, err := openSurface(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		store:      history.NewStore(surface, cfg.HistoryOptions()),
		rehydrator: rehydrate.New(cfg.Policy()).WithParallelism(cfg.VerifyParallelism),
	}, nil
}

// Close releases the history surface.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Printf("[history] failed to close storage: %v", err)
	}
}

// generator builds the synthesis flow against the configured webhook.
func (a *app) generator() (*synthesis.Generator, error) {
	if a.cfg.WebhookURL == "" {
		return nil, fmt.Errorf("webhook URL is required (set webhook_url or HIREFLOW_WEBHOOK_URL)")
	}

	opts := transport.DefaultOptions()
	opts.Timeout = a.cfg.WebhookTimeout()
	webhook, err := transport.NewWebhook(a.cfg.WebhookURL, opts)
	if err != nil {
		return nil, err
	}

	return synthesis.NewGenerator(webhook, a.store, a.cfg.Policy()), nil
}

// drafter builds the drafting client, or returns nil when no API key is configured.
func (a *app) drafter(ctx context.Context) (*llm.Drafter, error) {
	llmCfg, apiKey := a.cfg.LLMConfig()
	if apiKey == "" {
		return nil, nil
	}

	client, err := llm.NewClient(ctx, llmCfg, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return llm.NewDrafter(client), nil
}

// openSurface opens the persistence surface selected by storage_backend.
func openSurface(ctx context.Context, cfg *config.Config) (history.Surface, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return kv.NewMemory(), nil
	case config.BackendFile:
		return kv.OpenFile(cfg.StoragePath)
	case config.BackendSQLite:
		return kv.OpenSQLite(filepath.Join(cfg.StoragePath, "history.db"))
	case config.BackendPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return database, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
