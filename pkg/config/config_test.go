package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mathforge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "subject: Algebra\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("expected 1h TTL, got %v", cfg.Cache.TTL)
	}
	if cfg.Cache.MaxEntries != 1000 {
		t.Errorf("expected 1000 max entries, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.Pipeline.AdaptationInterval != 10 {
		t.Errorf("expected adaptation interval 10, got %d", cfg.Pipeline.AdaptationInterval)
	}
	if cfg.Subject != "Algebra" {
		t.Errorf("expected subject Algebra, got %q", cfg.Subject)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test-123")
	path := writeConfig(t, `
subject: Algebra
providers:
  openai:
    api_key: ${TEST_OPENAI_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Providers["openai"].APIKey; got != "sk-test-123" {
		t.Errorf("expected expanded key, got %q", got)
	}
}

func TestEffectiveMaxAttempts(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.TargetAccepted = 7
	if got := cfg.EffectiveMaxAttempts(); got != 700 {
		t.Errorf("expected 700, got %d", got)
	}
	cfg.Pipeline.MaxAttempts = 42
	if got := cfg.EffectiveMaxAttempts(); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Subject = "Algebra"
	valid.Providers = map[string]ProviderConfig{
		"openai": {APIKey: "sk-test"},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing provider credentials", func(c *Config) {
			c.Providers = map[string]ProviderConfig{"openai": {}}
		}},
		{"unknown provider", func(c *Config) {
			c.Engineer.Provider = "acme"
		}},
		{"missing model", func(c *Config) {
			c.Target.Model = ""
		}},
		{"no subject or taxonomy", func(c *Config) {
			c.Subject = ""
			c.Taxonomy = nil
		}},
		{"zero target", func(c *Config) {
			c.Pipeline.TargetAccepted = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Subject = "Algebra"
			cfg.Providers = map[string]ProviderConfig{"openai": {APIKey: "sk-test"}}
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigurationError, got %T", err)
			}
		})
	}
}
