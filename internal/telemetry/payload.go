package telemetry

import (
	"encoding/json"
	"log/slog"
	"strconv"
)

// SnapshotPayload mirrors the poll endpoint's JSON shape. Every field is
// optional and numerics arrive in whatever type the backend felt like
// sending, so anything that needs coercion is decoded as `any` and resolved
// by the normalizer.
type SnapshotPayload struct {
	CurrentDocument  any            `json:"current_document"`
	Processed        any            `json:"documents_processed"`
	Total            any            `json:"total_documents"`
	Progress         any            `json:"progress_percentage"`
	TimeOnDocument   any            `json:"time_on_document_seconds"`
	LastLogAge       any            `json:"last_log_seconds_ago"`
	AgentStatus      map[string]any `json:"agent_status"`
	AgentPipeline    []any          `json:"agent_pipeline"`
	SupervisorStack  []any          `json:"supervisor_stack"`
	RecentErrors     []any          `json:"recent_errors"`
	RecentWarnings   []any          `json:"recent_warnings"`
	QualityMetrics   map[string]any `json:"quality_metrics"`
	AgentPerformance map[string]any `json:"agent_performance"`
}

// DecodeSnapshot parses raw JSON into a SnapshotPayload. A payload that
// fails to parse yields the zero payload; normalization of the zero payload
// produces a fully-defaulted snapshot, so callers never see an error.
func DecodeSnapshot(raw []byte) SnapshotPayload {
	var p SnapshotPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		slog.Debug("snapshot payload discarded", "error", err)
		return SnapshotPayload{}
	}
	return p
}

// EventPayload mirrors one streamed log message.
type EventPayload struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	AgentName string `json:"agent_name"`
}

// coerceFloat resolves a loosely-typed JSON value to a float. Returns nil
// for anything that is not a number or a numeric string.
func coerceFloat(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return &f
		}
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return &f
		}
	}
	return nil
}

// coerceInt resolves a loosely-typed JSON value to an int, defaulting to 0.
func coerceInt(v any) int {
	if f := coerceFloat(v); f != nil {
		return int(*f)
	}
	return 0
}

// coerceString resolves a loosely-typed JSON value to a string, defaulting
// to the empty string.
func coerceString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// coerceStrings resolves a loose JSON list to its string elements,
// dropping anything that is not a string.
func coerceStrings(vs []any) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// coerceMessage extracts a human-readable message from a recent_errors or
// recent_warnings entry, which may be a bare string or a {message: ...}
// object.
func coerceMessage(v any) string {
	switch m := v.(type) {
	case string:
		return m
	case map[string]any:
		return coerceString(m["message"])
	}
	return ""
}
