package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pipewatch/pipewatch/internal/config"
	"github.com/pipewatch/pipewatch/internal/stream"
)

func testRotation() config.LogRotationConfig {
	return config.LogRotationConfig{
		MaxSizeMB:  10,
		MaxBackups: 1,
		MaxAgeDays: 1,
	}
}

func TestSetupTUILogger_WritesToFile(t *testing.T) {
	tmpDir := t.TempDir()

	result, err := SetupTUILogger(tmpDir, slog.LevelInfo, testRotation())
	if err != nil {
		t.Fatalf("SetupTUILogger failed: %v", err)
	}
	defer func() { _ = result.Close() }()

	expectedPath := filepath.Join(tmpDir, "pipewatch-debug.log")
	if result.FilePath != expectedPath {
		t.Errorf("FilePath = %q, want %q", result.FilePath, expectedPath)
	}

	result.Logger.Info("test message", "key", "value")

	content, err := os.ReadFile(result.FilePath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if !strings.Contains(string(content), "test message") {
		t.Errorf("log file should contain 'test message', got: %s", content)
	}
	if !strings.Contains(string(content), `"key":"value"`) {
		t.Errorf("log file should contain key=value, got: %s", content)
	}
}

func TestSetupTUILogger_DoesNotWriteToStderr(t *testing.T) {
	// Stderr output would corrupt the TUI display, so the TUI logger
	// must write only to its file.
	tmpDir := t.TempDir()

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	result, err := SetupTUILogger(tmpDir, slog.LevelInfo, testRotation())
	if err != nil {
		os.Stderr = oldStderr
		t.Fatalf("SetupTUILogger failed: %v", err)
	}
	defer func() { _ = result.Close() }()

	result.Logger.Info("this should not appear on stderr")

	_ = w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)

	if buf.Len() > 0 {
		t.Errorf("expected no stderr output, got: %s", buf.String())
	}
}

func TestSetupTUILoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupTUILoggerWithWriter(&buf, slog.LevelDebug)

	logger.Debug("debug line")

	if !strings.Contains(buf.String(), "debug line") {
		t.Errorf("expected debug line in output, got: %s", buf.String())
	}
}

func TestConnStatusMapping(t *testing.T) {
	// Covered here because the mapping lives in main.
	tests := []struct {
		in   string
		want string
	}{
		{"open", "open"},
		{"connecting", "connecting"},
		{"closed", "closed"},
	}
	for _, tt := range tests {
		got := connStatus(stream.Status(tt.in))
		if string(got) != tt.want {
			t.Errorf("connStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
