package telemetry

import (
	"testing"
	"time"
)

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple lowercase", "extractor", "extractor"},
		{"mixed case", "DocExtractor", "docextractor"},
		{"spaces to hyphens", "Doc Extractor", "doc-extractor"},
		{"already hyphenated collides", "doc-extractor", "doc-extractor"},
		{"runs collapse", "Doc -- Extractor!!", "doc-extractor"},
		{"leading and trailing junk", "  **Validator** ", "validator"},
		{"digits preserved", "Agent 2", "agent-2"},
		{"empty", "", ""},
		{"only punctuation", "***", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeID(tt.in); got != tt.want {
				t.Errorf("SanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
			// Idempotence: sanitizing an id is a no-op.
			if got := SanitizeID(SanitizeID(tt.in)); got != tt.want {
				t.Errorf("SanitizeID not idempotent for %q: got %q", tt.in, got)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  Severity
	}{
		{"ERROR", SeverityCritical},
		{"error", SeverityCritical},
		{"CRITICAL", SeverityCritical},
		{"WARNING", SeverityWarning},
		{"warn", SeverityWarning},
		{"INFO", SeverityNormal},
		{"DEBUG", SeverityNormal},
		{"", SeverityNormal},
		{"bogus", SeverityNormal},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.level); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestMetricOrientation(t *testing.T) {
	tests := []struct {
		id   string
		want Orientation
	}{
		{"faithfulness", HigherIsBetter},
		{"precision_at_3", HigherIsBetter},
		{"hallucination_rate", LowerIsBetter},
		{"error_count", LowerIsBetter},
		{"failure_rate", LowerIsBetter},
		{"recall", HigherIsBetter},
	}

	for _, tt := range tests {
		if got := MetricOrientation(tt.id); got != tt.want {
			t.Errorf("MetricOrientation(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestFormatMetric(t *testing.T) {
	v := func(f float64) *float64 { return &f }

	tests := []struct {
		name  string
		id    string
		value *float64
		want  string
	}{
		{"nil value", "faithfulness", nil, "n/a"},
		{"unit fraction as percent", "faithfulness", v(0.93), "93.0%"},
		{"rate above one still percent", "throughput_rate", v(1.5), "150.0%"},
		{"plain decimal", "avg_chunk_size", v(412.5), "412.50"},
		{"zero", "recall", v(0), "0.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMetric(tt.id, tt.value); got != tt.want {
				t.Errorf("FormatMetric(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestDecodeSnapshot_Malformed(t *testing.T) {
	// Garbage input yields the zero payload, which normalizes cleanly.
	p := DecodeSnapshot([]byte("{not json"))
	snap := Normalize(p, time.Now())

	if snap.Summary.Total != 0 || snap.Summary.Processed != 0 {
		t.Errorf("expected zeroed summary, got %+v", snap.Summary)
	}
	if snap.Summary.AlertMessages == nil {
		t.Error("AlertMessages must be non-nil")
	}
	if snap.Agents == nil || snap.Quality.Metrics == nil || snap.Quality.LayerFailures == nil {
		t.Error("normalized collections must be non-nil")
	}
}

func TestNormalize_FullPayload(t *testing.T) {
	raw := []byte(`{
		"current_document": "paper-017.pdf",
		"documents_processed": 12,
		"total_documents": "40",
		"progress_percentage": 30.0,
		"time_on_document_seconds": 95.5,
		"last_log_seconds_ago": 3,
		"agent_status": {"Doc Extractor": "running", "Validator": "failed", "Curator": "completed"},
		"agent_pipeline": ["Doc Extractor", "Curator", "Validator"],
		"supervisor_stack": ["Doc Extractor", "Curator"],
		"recent_errors": [{"message": "validation layer 2 rejected output"}],
		"recent_warnings": [{"message": "slow chunking"}, "plain warning"],
		"quality_metrics": {
			"faithfulness": 0.91,
			"hallucination_rate": "0.04",
			"layer_failures": ["layer 2: citation mismatch"],
			"unparseable": {"nested": true}
		},
		"agent_performance": {
			"Doc Extractor": {"executions": 10, "successes": 9, "failures": 1, "avg_time": 2.5}
		}
	}`)

	snap := Normalize(DecodeSnapshot(raw), time.Now())

	if snap.Summary.CurrentDocument != "paper-017.pdf" {
		t.Errorf("CurrentDocument = %q", snap.Summary.CurrentDocument)
	}
	if snap.Summary.Total != 40 {
		t.Errorf("Total = %d, want 40 (string coercion)", snap.Summary.Total)
	}
	if snap.Summary.Errors != 1 || snap.Summary.Warnings != 2 {
		t.Errorf("Errors/Warnings = %d/%d, want 1/2", snap.Summary.Errors, snap.Summary.Warnings)
	}
	if snap.Summary.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want critical (failed agent + recent error)", snap.Summary.Severity)
	}

	if len(snap.Agents) != 3 {
		t.Fatalf("agents = %d, want 3", len(snap.Agents))
	}
	// Pipeline order is preserved.
	if snap.Agents[0].ID != "doc-extractor" || snap.Agents[1].ID != "curator" || snap.Agents[2].ID != "validator" {
		t.Errorf("agent order = %v", []string{snap.Agents[0].ID, snap.Agents[1].ID, snap.Agents[2].ID})
	}
	ext := snap.Agents[0]
	if ext.Status != AgentRunning || !ext.Active {
		t.Errorf("extractor status = %v active=%v", ext.Status, ext.Active)
	}
	if ext.Executions != 10 || ext.Failures != 1 || ext.AvgTime != 2.5 {
		t.Errorf("extractor counters = %+v", ext)
	}

	if len(snap.Plan) != 2 {
		t.Fatalf("plan steps = %d, want 2 (from supervisor stack)", len(snap.Plan))
	}
	if snap.Plan[0].Status != StepCompleted || snap.Plan[1].Status != StepInProgress {
		t.Errorf("plan statuses = %v/%v", snap.Plan[0].Status, snap.Plan[1].Status)
	}
	if snap.Plan[0].RelatedAgentID != "doc-extractor" {
		t.Errorf("related agent = %q", snap.Plan[0].RelatedAgentID)
	}

	if len(snap.Quality.Metrics) != 3 {
		t.Fatalf("metrics = %d, want 3 (layer_failures split out)", len(snap.Quality.Metrics))
	}
	if len(snap.Quality.LayerFailures) != 1 {
		t.Errorf("layer failures = %v", snap.Quality.LayerFailures)
	}
	for _, m := range snap.Quality.Metrics {
		if m.ID == "unparseable" && m.Value != nil {
			t.Error("unparseable metric value must be nil")
		}
		if m.ID == "hallucination-rate" {
			if m.Value == nil || *m.Value != 0.04 {
				t.Errorf("hallucination rate value = %v", m.Value)
			}
			if m.Orientation != LowerIsBetter {
				t.Error("hallucination rate should be lower-is-better")
			}
		}
	}
}

func TestNormalize_EmptyStackUsesPipeline(t *testing.T) {
	raw := []byte(`{"agent_pipeline": ["Extractor", "Validator"]}`)
	snap := Normalize(DecodeSnapshot(raw), time.Now())

	if len(snap.Plan) != 2 {
		t.Fatalf("plan steps = %d, want 2", len(snap.Plan))
	}
	for _, step := range snap.Plan {
		if step.Status != StepPending {
			t.Errorf("step %q status = %v, want pending", step.ID, step.Status)
		}
	}
}

func TestNormalizeEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ev := NormalizeEvent(EventPayload{
		Timestamp: "2026-03-01T11:59:30Z",
		Level:     "error",
		Message:   "extraction failed",
		AgentName: "Doc Extractor",
	}, now)

	if ev.Severity != SeverityCritical {
		t.Errorf("severity = %v, want critical", ev.Severity)
	}
	if ev.Level != "ERROR" {
		t.Errorf("level = %q", ev.Level)
	}
	if ev.Time.Equal(now) {
		t.Error("timestamp from payload should be used when parseable")
	}
	if ev.ID == "" {
		t.Error("event id must be assigned")
	}

	// Unparseable timestamp falls back to now.
	ev2 := NormalizeEvent(EventPayload{Timestamp: "yesterday", Level: "INFO"}, now)
	if !ev2.Time.Equal(now) {
		t.Errorf("fallback time = %v, want %v", ev2.Time, now)
	}
}
