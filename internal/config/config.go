// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/jonathan/hireflow/internal/history"
	"github.com/jonathan/hireflow/internal/llm"
	"github.com/jonathan/hireflow/internal/payload"
	"github.com/jonathan/hireflow/internal/rehydrate"
)

// Storage backends for the history surface.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config is loaded from an optional JSON file and then overlaid with
// environment variables. Zero values fall back to Default().
type Config struct {
	// Synthesis upstream
	WebhookURL            string `json:"webhook_url,omitempty" env:"HIREFLOW_WEBHOOK_URL"`
	WebhookTimeoutSeconds int    `json:"webhook_timeout_seconds,omitempty" env:"HIREFLOW_WEBHOOK_TIMEOUT_SECONDS"`

	// History storage
	StorageBackend  string `json:"storage_backend,omitempty" env:"HIREFLOW_STORAGE_BACKEND"`
	StoragePath     string `json:"storage_path,omitempty" env:"HIREFLOW_STORAGE_PATH"`
	DatabaseURL     string `json:"database_url,omitempty" env:"DATABASE_URL"`
	HistoryKey      string `json:"history_key,omitempty" env:"HIREFLOW_HISTORY_KEY"`
	HistoryCapacity int    `json:"history_capacity,omitempty" env:"HIREFLOW_HISTORY_CAPACITY"`

	// Payload policy
	CandidateMinLength int `json:"candidate_min_length,omitempty" env:"HIREFLOW_CANDIDATE_MIN_LENGTH"`
	UnverifiedMinBytes int `json:"unverified_min_bytes,omitempty" env:"HIREFLOW_UNVERIFIED_MIN_BYTES"`
	SniffBytes         int `json:"sniff_bytes,omitempty" env:"HIREFLOW_SNIFF_BYTES"`
	VerifyParallelism  int `json:"verify_parallelism,omitempty" env:"HIREFLOW_VERIFY_PARALLELISM"`

	// Drafting
	LLMProvider   string `json:"llm_provider,omitempty" env:"LLM_PROVIDER"`
	LLMModel      string `json:"llm_model,omitempty" env:"LLM_MODEL"`
	GeminiAPIKey  string `json:"gemini_api_key,omitempty" env:"GEMINI_API_KEY"`
	OpenAIAPIKey  string `json:"openai_api_key,omitempty" env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty" env:"OPENAI_BASE_URL"`

	// Server
	Port int `json:"port,omitempty" env:"PORT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		WebhookTimeoutSeconds: 120,
		StorageBackend:        BackendFile,
		StoragePath:           ".hireflow",
		HistoryKey:            history.DefaultKey,
		HistoryCapacity:       history.DefaultCapacity,
		CandidateMinLength:    payload.DefaultCandidateMinLength,
		UnverifiedMinBytes:    payload.DefaultUnverifiedMinBytes,
		SniffBytes:            payload.DefaultSniffBytes,
		VerifyParallelism:     rehydrate.DefaultParallelism,
		LLMProvider:           string(llm.ProviderGemini),
		Port:                  8080,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load builds the effective configuration: the optional file at path, then
// environment overrides, then defaults for anything still unset.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	merged := cfg.MergeWithDefaults(Default())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendFile, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("config error: unknown storage_backend %q", c.StorageBackend)
	}
	if c.StorageBackend == BackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required for the postgres backend")
	}
	if (c.StorageBackend == BackendFile || c.StorageBackend == BackendSQLite) && c.StoragePath == "" {
		return fmt.Errorf("config error: 'storage_path' is required for the %s backend", c.StorageBackend)
	}

	if c.HistoryCapacity < 0 {
		return fmt.Errorf("config error: 'history_capacity' must be non-negative")
	}
	if c.CandidateMinLength < 0 || c.UnverifiedMinBytes < 0 || c.SniffBytes < 0 {
		return fmt.Errorf("config error: payload thresholds must be non-negative")
	}
	if c.WebhookTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'webhook_timeout_seconds' must be non-negative")
	}

	switch llm.Provider(c.LLMProvider) {
	case "", llm.ProviderGemini, llm.ProviderOpenAI:
	default:
		return fmt.Errorf("config error: unknown llm_provider %q", c.LLMProvider)
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.WebhookURL == "" {
		result.WebhookURL = defaults.WebhookURL
	}
	if result.StorageBackend == "" {
		result.StorageBackend = defaults.StorageBackend
	}
	if result.StoragePath == "" {
		result.StoragePath = defaults.StoragePath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.HistoryKey == "" {
		result.HistoryKey = defaults.HistoryKey
	}
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.LLMModel == "" {
		result.LLMModel = defaults.LLMModel
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}
	if result.OpenAIBaseURL == "" {
		result.OpenAIBaseURL = defaults.OpenAIBaseURL
	}

	// Int fields: use default if zero
	if result.WebhookTimeoutSeconds == 0 {
		result.WebhookTimeoutSeconds = defaults.WebhookTimeoutSeconds
	}
	if result.HistoryCapacity == 0 {
		result.HistoryCapacity = defaults.HistoryCapacity
	}
	if result.CandidateMinLength == 0 {
		result.CandidateMinLength = defaults.CandidateMinLength
	}
	if result.UnverifiedMinBytes == 0 {
		result.UnverifiedMinBytes = defaults.UnverifiedMinBytes
	}
	if result.SniffBytes == 0 {
		result.SniffBytes = defaults.SniffBytes
	}
	if result.VerifyParallelism == 0 {
		result.VerifyParallelism = defaults.VerifyParallelism
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	return result
}

// Policy returns the payload thresholds.
func (c *Config) Policy() payload.Policy {
	return payload.Policy{
		CandidateMinLength: c.CandidateMinLength,
		UnverifiedMinBytes: c.UnverifiedMinBytes,
		SniffBytes:         c.SniffBytes,
	}
}

// HistoryOptions returns the history store options.
func (c *Config) HistoryOptions() *history.Options {
	return &history.Options{Key: c.HistoryKey, Capacity: c.HistoryCapacity}
}

// WebhookTimeout returns the upstream request timeout.
func (c *Config) WebhookTimeout() time.Duration {
	return time.Duration(c.WebhookTimeoutSeconds) * time.Second
}

// LLMConfig returns the drafting client configuration and its API key.
func (c *Config) LLMConfig() (*llm.Config, string) {
	if llm.Provider(c.LLMProvider) == llm.ProviderOpenAI {
		cfg := llm.DefaultOpenAIConfig()
		cfg.BaseURL = c.OpenAIBaseURL
		if c.LLMModel != "" {
			cfg = cfg.WithModel(c.LLMModel)
		}
		return cfg, c.OpenAIAPIKey
	}

	cfg := llm.DefaultGeminiConfig()
	if c.LLMModel != "" {
		cfg = cfg.WithModel(c.LLMModel)
	}
	return cfg, c.GeminiAPIKey
}
