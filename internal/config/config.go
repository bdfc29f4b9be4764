// Package config provides configuration types and defaults for pipewatch.
package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for pipewatch.
type Config struct {
	Backend     BackendConfig     `yaml:"backend" mapstructure:"backend"`
	Engine      EngineConfig      `yaml:"engine" mapstructure:"engine"`
	Assistant   AssistantConfig   `yaml:"assistant" mapstructure:"assistant"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
}

// BackendConfig holds the monitoring backend endpoints and transport timing.
type BackendConfig struct {
	SnapshotURL    string        `yaml:"snapshot_url" mapstructure:"snapshot_url"`       // poll endpoint
	StreamURL      string        `yaml:"stream_url" mapstructure:"stream_url"`           // websocket endpoint
	PollInterval   time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`     // snapshot poll cadence
	Heartbeat      time.Duration `yaml:"heartbeat" mapstructure:"heartbeat"`             // liveness ping interval
	ReconnectDelay time.Duration `yaml:"reconnect_delay" mapstructure:"reconnect_delay"` // fixed delay between connect attempts
}

// EngineConfig holds derived-state capacities and windows. Each capacity is
// a fixed positive integer enforced on every append.
type EngineConfig struct {
	EventBuffer       int           `yaml:"event_buffer" mapstructure:"event_buffer"`
	LatencyHistory    int           `yaml:"latency_history" mapstructure:"latency_history"`
	MetricHistory     int           `yaml:"metric_history" mapstructure:"metric_history"`
	TrendHistory      int           `yaml:"trend_history" mapstructure:"trend_history"`
	ActiveEventWindow time.Duration `yaml:"active_event_window" mapstructure:"active_event_window"` // how long streamed events weigh on system severity
}

// AssistantConfig holds the conversational assistant endpoint settings.
type AssistantConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PathsConfig holds file paths for preferences and logs.
type PathsConfig struct {
	Prefs string `yaml:"prefs" mapstructure:"prefs"`
	Log   string `yaml:"log" mapstructure:"log"`
}

// LogRotationConfig holds settings for debug log rotation
// (lumberjack-based).
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			SnapshotURL:    "http://localhost:8765/api/stats",
			StreamURL:      "ws://localhost:8765/ws",
			PollInterval:   20 * time.Second,
			Heartbeat:      30 * time.Second,
			ReconnectDelay: 5 * time.Second,
		},
		Engine: EngineConfig{
			EventBuffer:       2000,
			LatencyHistory:    60,
			MetricHistory:     120,
			TrendHistory:      360,
			ActiveEventWindow: 40 * time.Second,
		},
		Assistant: AssistantConfig{
			Enabled: true,
			URL:     "http://localhost:8765/api/assistant",
			Timeout: 30 * time.Second,
		},
		Paths: PathsConfig{
			Prefs: ".pipewatch/prefs.json",
			Log:   ".pipewatch/pipewatch.log",
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Validate checks the invariants the engine depends on.
func (c *Config) Validate() error {
	positives := []struct {
		name string
		ok   bool
	}{
		{"engine.event_buffer", c.Engine.EventBuffer > 0},
		{"engine.latency_history", c.Engine.LatencyHistory > 0},
		{"engine.metric_history", c.Engine.MetricHistory > 0},
		{"engine.trend_history", c.Engine.TrendHistory > 0},
		{"backend.poll_interval", c.Backend.PollInterval > 0},
		{"backend.heartbeat", c.Backend.Heartbeat > 0},
		{"backend.reconnect_delay", c.Backend.ReconnectDelay > 0},
	}
	for _, p := range positives {
		if !p.ok {
			return fmt.Errorf("%s must be positive", p.name)
		}
	}
	if c.Backend.SnapshotURL == "" {
		return fmt.Errorf("backend.snapshot_url must be set")
	}
	if c.Backend.StreamURL == "" {
		return fmt.Errorf("backend.stream_url must be set")
	}
	return nil
}
