package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigurationError reports invalid or missing startup configuration.
// It is fatal before any work starts, never per-attempt.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// Config holds all mathforge configuration.
type Config struct {
	Pipeline   PipelineConfig            `yaml:"pipeline"`
	Engineer   RoleConfig                `yaml:"engineer_model"`
	Checker    RoleConfig                `yaml:"checker_model"`
	Target     RoleConfig                `yaml:"target_model"`
	Similarity SimilarityConfig          `yaml:"similarity"`
	Cache      CacheConfig               `yaml:"cache"`
	Ledger     LedgerConfig              `yaml:"ledger"`
	Telemetry  TelemetryConfig           `yaml:"telemetry"`
	Providers  map[string]ProviderConfig `yaml:"providers"`
	Subject    string                    `yaml:"subject"`
	Topic      string                    `yaml:"topic"`
	Taxonomy   map[string][]string       `yaml:"taxonomy"`
}

// RoleConfig selects the provider and model for one pipeline role.
type RoleConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	// Options carries provider-specific request knobs, for example
	// reasoning effort for OpenAI o-series models.
	Options map[string]any `yaml:"options"`
}

// SimilarityConfig controls the optional similarity side call on acceptance.
type SimilarityConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// ProviderConfig defines credentials and an optional base URL override for
// an upstream LLM provider.
type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
	URL    string `yaml:"url"`
}

// PipelineConfig controls the generation run.
type PipelineConfig struct {
	TargetAccepted         int     `yaml:"target_accepted"`
	MaxAttempts            int     `yaml:"max_attempts"`
	MaxWorkers             int     `yaml:"max_workers"`
	AdaptationInterval     int     `yaml:"adaptation_interval"`
	TargetSuccessRate      float64 `yaml:"target_success_rate"`
	UseEnhancedConcurrency bool    `yaml:"use_enhanced_concurrency"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Persistent bool          `yaml:"persistent"`
	Dir        string        `yaml:"dir"`
}

// LedgerConfig controls the optional SQLite usage journal.
type LedgerConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// DefaultWorkers derives the default worker count from the host CPU count.
func DefaultWorkers() int {
	n := int(math.Floor(float64(runtime.NumCPU()) * 0.9))
	if n < 1 {
		return 1
	}
	return n
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			TargetAccepted:         10,
			MaxWorkers:             DefaultWorkers(),
			AdaptationInterval:     10,
			TargetSuccessRate:      0.3,
			UseEnhancedConcurrency: true,
		},
		Engineer: RoleConfig{Provider: "openai", Model: "gpt-4o"},
		Checker:  RoleConfig{Provider: "openai", Model: "gpt-4o"},
		Target:   RoleConfig{Provider: "openai", Model: "o1"},
		Similarity: SimilarityConfig{
			Provider: "openai",
			Model:    "gpt-4o",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        time.Hour,
			MaxEntries: 1000,
			Dir:        "cache/llm",
		},
		Ledger: LedgerConfig{
			DBPath: "mathforge.db",
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// EffectiveMaxAttempts returns the configured safety ceiling, defaulting to
// 100 attempts per requested problem.
func (c *Config) EffectiveMaxAttempts() int {
	if c.Pipeline.MaxAttempts > 0 {
		return c.Pipeline.MaxAttempts
	}
	return c.Pipeline.TargetAccepted * 100
}

// Validate checks that every configured role has a usable provider with
// credentials. Violations are fatal at startup.
func (c *Config) Validate() error {
	roles := []struct {
		name string
		role RoleConfig
	}{
		{"engineer_model", c.Engineer},
		{"checker_model", c.Checker},
		{"target_model", c.Target},
	}
	for _, r := range roles {
		if r.role.Provider == "" {
			return &ConfigurationError{Field: r.name + ".provider", Reason: "missing provider"}
		}
		if r.role.Model == "" {
			return &ConfigurationError{Field: r.name + ".model", Reason: "missing model"}
		}
		p, ok := c.Providers[r.role.Provider]
		if !ok {
			return &ConfigurationError{
				Field:  "providers." + r.role.Provider,
				Reason: fmt.Sprintf("provider used by %s is not configured", r.name),
			}
		}
		if p.APIKey == "" {
			return &ConfigurationError{
				Field:  "providers." + r.role.Provider + ".api_key",
				Reason: "missing API key",
			}
		}
	}
	if c.Similarity.Enabled {
		if c.Similarity.Provider == "" || c.Similarity.Model == "" {
			return &ConfigurationError{Field: "similarity", Reason: "provider and model required when enabled"}
		}
		if _, ok := c.Providers[c.Similarity.Provider]; !ok {
			return &ConfigurationError{
				Field:  "providers." + c.Similarity.Provider,
				Reason: "provider used by similarity is not configured",
			}
		}
	}
	if c.Pipeline.TargetAccepted < 1 {
		return &ConfigurationError{Field: "pipeline.target_accepted", Reason: "must be at least 1"}
	}
	if c.Pipeline.MaxWorkers < 1 {
		return &ConfigurationError{Field: "pipeline.max_workers", Reason: "must be at least 1"}
	}
	if c.Subject == "" && len(c.Taxonomy) == 0 {
		return &ConfigurationError{Field: "subject", Reason: "either subject/topic or a taxonomy is required"}
	}
	return nil
}
