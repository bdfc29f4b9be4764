package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// LayoutPrefs is the small persisted UI preference set. It is independent
// of telemetry: SoftReset leaves it alone.
type LayoutPrefs struct {
	ShowPlan bool `json:"show_plan"`
}

func defaultPrefs() LayoutPrefs {
	return LayoutPrefs{ShowPlan: true}
}

// loadPrefs reads the preference file, falling back to defaults when the
// file is missing or corrupt.
func loadPrefs(path string) LayoutPrefs {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("layout prefs unreadable, using defaults", "path", path, "error", err)
		}
		return defaultPrefs()
	}

	var p LayoutPrefs
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("layout prefs corrupt, using defaults", "path", path, "error", err)
		return defaultPrefs()
	}
	return p
}

// savePrefs writes the preference file atomically (temp file + rename).
// Persistence failures are logged and otherwise ignored: a preference that
// does not survive a restart is not worth failing an ingest path over.
func savePrefs(path string, p LayoutPrefs) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("layout prefs dir", "path", path, "error", err)
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		slog.Warn("layout prefs marshal", "error", err)
		return
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		slog.Warn("layout prefs write", "path", tmp, "error", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		slog.Warn("layout prefs rename", "path", path, "error", err)
	}
}

// Layout returns the current layout preference.
func (s *Store) Layout() LayoutPrefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// TogglePlan flips (or, with a non-nil value, sets) the plan-panel
// visibility and rewrites the preference file.
func (s *Store) TogglePlan(value *bool) LayoutPrefs {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value != nil {
		s.prefs.ShowPlan = *value
	} else {
		s.prefs.ShowPlan = !s.prefs.ShowPlan
	}
	if s.opts.PrefsPath != "" {
		savePrefs(s.opts.PrefsPath, s.prefs)
	}
	s.signal()
	return s.prefs
}
