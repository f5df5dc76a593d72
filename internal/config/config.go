// Package config loads agent settings from defaults, an optional YAML file,
// and AGT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/petasbytes/entropy-agent/internal/entropy"
)

// DefaultModel mirrors provider.DefaultModel so config stays free of the SDK.
const DefaultModel = "claude-3-7-sonnet-latest"

type Config struct {
	Entropy entropy.Config `yaml:"entropy"`

	Doors     int    `yaml:"doors" env:"AGT_DOORS"`
	Model     string `yaml:"model" env:"AGT_MODEL"`
	MaxTokens int64  `yaml:"max_tokens" env:"AGT_MAX_TOKENS"`
	MaxSteps  int    `yaml:"max_steps" env:"AGT_MAX_STEPS"`

	// HistoryBudget bounds the chat history sent per turn, in estimated
	// runes. Zero sends everything.
	HistoryBudget int `yaml:"history_budget" env:"AGT_HISTORY_BUDGET"`

	// APIKey is never read from the YAML file.
	APIKey  string `yaml:"-" env:"ANTHROPIC_API_KEY"`
	BaseURL string `yaml:"base_url" env:"AGT_BASE_URL"`

	LogLevel  string `yaml:"log_level" env:"AGT_LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"AGT_LOG_FORMAT"`

	ObserveJSON  bool   `yaml:"observe_json" env:"AGT_OBSERVE_JSON"`
	ArtifactsDir string `yaml:"artifacts_dir" env:"AGT_ARTIFACTS_DIR"`
	MetricsAddr  string `yaml:"metrics_addr" env:"AGT_METRICS_ADDR"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Entropy:       entropy.DefaultConfig(),
		Doors:         5,
		Model:         DefaultModel,
		MaxTokens:     1024,
		MaxSteps:      8,
		HistoryBudget: 32000,
		LogLevel:      "info",
		LogFormat:     "console",
		ArtifactsDir:  ".agent",
	}
}

// Load applies path (if it exists) and the environment on top of Default.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting the agent cannot run with.
func (c Config) Validate() error {
	if err := c.Entropy.Validate(); err != nil {
		return err
	}
	if c.Doors < 2 {
		return fmt.Errorf("config: doors must be at least 2, got %d", c.Doors)
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("config: model is required")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("config: max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("config: max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.HistoryBudget < 0 {
		return fmt.Errorf("config: history_budget must not be negative, got %d", c.HistoryBudget)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("config: log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}
