package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Backend.PollInterval != 20*time.Second {
		t.Errorf("PollInterval = %v, want 20s", cfg.Backend.PollInterval)
	}
	if cfg.Engine.EventBuffer != 2000 {
		t.Errorf("EventBuffer = %d, want 2000", cfg.Engine.EventBuffer)
	}
	if cfg.Engine.TrendHistory != 360 {
		t.Errorf("TrendHistory = %d, want 360", cfg.Engine.TrendHistory)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(*Config) {}, false},
		{"zero event buffer", func(c *Config) { c.Engine.EventBuffer = 0 }, true},
		{"negative latency history", func(c *Config) { c.Engine.LatencyHistory = -1 }, true},
		{"zero poll interval", func(c *Config) { c.Backend.PollInterval = 0 }, true},
		{"missing snapshot url", func(c *Config) { c.Backend.SnapshotURL = "" }, true},
		{"missing stream url", func(c *Config) { c.Backend.StreamURL = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Backend.Heartbeat != 30*time.Second {
		t.Errorf("Heartbeat = %v, want default 30s", cfg.Backend.Heartbeat)
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
backend:
  snapshot_url: http://backend:9000/api/stats
  poll_interval: 5s
engine:
  event_buffer: 500
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.Set("config", path)
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Backend.SnapshotURL != "http://backend:9000/api/stats" {
		t.Errorf("SnapshotURL = %q", cfg.Backend.SnapshotURL)
	}
	if cfg.Backend.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s (duration hook)", cfg.Backend.PollInterval)
	}
	if cfg.Engine.EventBuffer != 500 {
		t.Errorf("EventBuffer = %d, want 500", cfg.Engine.EventBuffer)
	}
	// Untouched fields keep defaults.
	if cfg.Engine.MetricHistory != 120 {
		t.Errorf("MetricHistory = %d, want default 120", cfg.Engine.MetricHistory)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	v.Set("config", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := LoadConfig(v); err == nil {
		t.Error("explicit config file must exist")
	}
}

func TestLoadConfig_InvalidValuesRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  event_buffer: -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.Set("config", path)
	if _, err := LoadConfig(v); err == nil {
		t.Error("negative capacity must fail validation")
	}
}
