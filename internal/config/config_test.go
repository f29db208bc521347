package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/handletrace/internal/model"
)

// TestNewConfigDefaults verifies the compiled-in defaults.
func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.StealthLevel != DefaultStealthLevel {
		t.Errorf("expected stealth level %d, got %d", DefaultStealthLevel, cfg.StealthLevel)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("expected %d workers, got %d", DefaultWorkers, cfg.Workers)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("expected 1h cache TTL, got %s", cfg.CacheTTL)
	}
	if cfg.CorrelationThreshold != 0.75 {
		t.Errorf("expected correlation threshold 0.75, got %f", cfg.CorrelationThreshold)
	}
	if len(cfg.Platforms) == 0 {
		t.Error("expected built-in platforms")
	}
}

// TestConfigValidate exercises every validation branch.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Seeds = []string{"alice"}
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"no seed", func(c *Config) { c.Seeds = nil }, ErrNoSeed},
		{"stealth too low", func(c *Config) { c.StealthLevel = 0 }, ErrInvalidStealthLevel},
		{"stealth too high", func(c *Config) { c.StealthLevel = 4 }, ErrInvalidStealthLevel},
		{"zero variants", func(c *Config) { c.MaxVariants = 0 }, ErrInvalidMaxVariants},
		{"zero workers", func(c *Config) { c.Workers = 0 }, ErrInvalidWorkers},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, ErrInvalidTimeout},
		{"threshold zero", func(c *Config) { c.CorrelationThreshold = 0 }, ErrInvalidThreshold},
		{"threshold above one", func(c *Config) { c.CorrelationThreshold = 1.1 }, ErrInvalidThreshold},
		{"zero budget", func(c *Config) { c.SessionBudget = 0 }, ErrInvalidBudget},
		{"both report formats", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
		{"tor and proxy", func(c *Config) { c.UseTor = true; c.ProxyAddress = "127.0.0.1:9050" }, ErrConflictingProxies},
		{"all platforms disabled", func(c *Config) {
			for i := range c.Platforms {
				c.Platforms[i].Disabled = true
			}
		}, ErrNoPlatforms},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadConfigFile verifies YAML loading and the not-found sentinel.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns sentinel", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("parses platforms and credentials", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".handletrace")
		content := `platforms:
  forge:
    profile_url_template: "https://forge.example/%s"
    existence_markers: ["member since"]
    min_interval: 2s
  github:
    disabled: true
credentials:
  breach_registry_key: "brk-123"
  openai_key: "sk-test"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if f.Credentials.BreachRegistryKey != "brk-123" {
			t.Errorf("unexpected breach key: %s", f.Credentials.BreachRegistryKey)
		}
		if f.Platforms["forge"].MinInterval != 2*time.Second {
			t.Errorf("unexpected min interval: %s", f.Platforms["forge"].MinInterval)
		}
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".handletrace")
		if err := os.WriteFile(path, []byte(":\n  - ["), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

// TestFileApply verifies the merge semantics over the built-in registry.
func TestFileApply(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	before := len(cfg.Platforms)

	f := &File{
		Platforms: map[string]model.Platform{
			// Override a built-in field and disable another platform.
			"github": {ProfileURLTemplate: "https://mirror.example/%s"},
			"reddit": {Disabled: true},
			// Add an entirely new platform.
			"forge": {
				ProfileURLTemplate: "https://forge.example/%s",
				MinInterval:        2 * time.Second,
			},
		},
		Credentials: Credentials{SearchAPIKey: "search-1"},
	}
	f.Apply(cfg)

	if len(cfg.Platforms) != before+1 {
		t.Errorf("expected one added platform, got %d -> %d", before, len(cfg.Platforms))
	}

	byName := make(map[string]model.Platform)
	for _, p := range cfg.Platforms {
		byName[p.Name] = p
	}

	if byName["github"].ProfileURLTemplate != "https://mirror.example/%s" {
		t.Errorf("override not applied: %s", byName["github"].ProfileURLTemplate)
	}
	if len(byName["github"].ExistenceMarkers) == 0 {
		t.Error("untouched built-in fields must survive the merge")
	}
	if !byName["reddit"].Disabled {
		t.Error("expected reddit disabled")
	}
	if byName["forge"].MinInterval != 2*time.Second {
		t.Errorf("new platform not added correctly: %+v", byName["forge"])
	}
	if cfg.Credentials.SearchAPIKey != "search-1" {
		t.Errorf("credentials not applied: %+v", cfg.Credentials)
	}

	enabled := cfg.EnabledPlatforms()
	for _, p := range enabled {
		if p.Name == "reddit" {
			t.Error("EnabledPlatforms returned a disabled platform")
		}
	}
}
