package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// layerFailuresKey is the quality_metrics entry that carries validation
// layer failure messages rather than a numeric metric.
const layerFailuresKey = "layer_failures"

// Normalize converts a raw snapshot payload into the canonical model.
// It is a pure transform with a defined fallback for every field; it never
// panics on missing or malformed input.
func Normalize(p SnapshotPayload, now time.Time) Snapshot {
	agents := normalizeAgents(p)
	quality := normalizeQuality(p.QualityMetrics)
	plan := normalizePlan(p, agents)
	summary := normalizeSummary(p, agents, quality)

	return Snapshot{
		Summary: summary,
		Agents:  agents,
		Plan:    plan,
		Quality: quality,
		Time:    now,
	}
}

// NormalizeEvent converts one streamed log payload into an Event, assigning
// it a fresh id and deriving severity from the raw level string.
func NormalizeEvent(p EventPayload, now time.Time) Event {
	t := now
	if p.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, p.Timestamp); err == nil {
			t = parsed
		}
	}
	return Event{
		ID:        uuid.NewString(),
		Time:      t,
		Level:     strings.ToUpper(p.Level),
		Severity:  ParseLevel(p.Level),
		Message:   p.Message,
		AgentName: p.AgentName,
	}
}

func normalizeAgents(p SnapshotPayload) []Agent {
	byID := make(map[string]*Agent)
	order := []string{}

	upsert := func(name string) *Agent {
		id := SanitizeID(name)
		if id == "" {
			return nil
		}
		if a, ok := byID[id]; ok {
			return a
		}
		a := &Agent{ID: id, Name: name, Status: AgentUnknown}
		byID[id] = a
		order = append(order, id)
		return a
	}

	// Pipeline order first so display order follows the pipeline definition.
	for _, name := range coerceStrings(p.AgentPipeline) {
		upsert(name)
	}
	// Status map may reference agents outside the declared pipeline.
	statusNames := make([]string, 0, len(p.AgentStatus))
	for name := range p.AgentStatus {
		statusNames = append(statusNames, name)
	}
	sort.Strings(statusNames)
	for _, name := range statusNames {
		if a := upsert(name); a != nil {
			a.Status = ParseAgentStatus(coerceString(p.AgentStatus[name]))
			a.Active = a.Status == AgentRunning
		}
	}
	// Performance counters.
	perfNames := make([]string, 0, len(p.AgentPerformance))
	for name := range p.AgentPerformance {
		perfNames = append(perfNames, name)
	}
	sort.Strings(perfNames)
	for _, name := range perfNames {
		a := upsert(name)
		if a == nil {
			continue
		}
		counters, _ := p.AgentPerformance[name].(map[string]any)
		a.Executions = coerceInt(counters["executions"])
		a.Successes = coerceInt(counters["successes"])
		a.Failures = coerceInt(counters["failures"])
		if f := coerceFloat(counters["avg_time"]); f != nil {
			a.AvgTime = *f
		}
	}

	out := make([]Agent, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

func normalizeQuality(raw map[string]any) Quality {
	q := Quality{Metrics: []QualityMetric{}, LayerFailures: []string{}}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if id == layerFailuresKey {
			if list, ok := raw[id].([]any); ok {
				q.LayerFailures = coerceStrings(list)
			}
			continue
		}
		value := coerceFloat(raw[id])
		orientation := MetricOrientation(id)
		q.Metrics = append(q.Metrics, QualityMetric{
			ID:          SanitizeID(id),
			Label:       metricLabel(id),
			Value:       value,
			Display:     FormatMetric(id, value),
			Orientation: orientation,
		})
	}
	return q
}

// MetricOrientation infers whether lower values of a metric are better.
// Identifiers naming rates, errors, or hallucination measures are
// lower-is-better; everything else is higher-is-better.
func MetricOrientation(id string) Orientation {
	lower := strings.ToLower(id)
	for _, marker := range []string{"rate", "error", "hallucination"} {
		if strings.Contains(lower, marker) {
			return LowerIsBetter
		}
	}
	return HigherIsBetter
}

// FormatMetric renders a raw metric value for display: a percentage when
// the value is a unit fraction or the identifier implies one, otherwise a
// fixed-precision decimal. A nil value renders as "n/a".
func FormatMetric(id string, value *float64) string {
	if value == nil {
		return "n/a"
	}
	lower := strings.ToLower(id)
	ratey := strings.Contains(lower, "rate") ||
		strings.Contains(lower, "percent") ||
		strings.Contains(lower, "pct")
	if *value <= 1 || ratey {
		return fmt.Sprintf("%.1f%%", *value*100)
	}
	return fmt.Sprintf("%.2f", *value)
}

func metricLabel(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	if len(words) == 0 {
		return id
	}
	return strings.Join(words, " ")
}

// normalizePlan derives plan steps from the supervisor stack: every entry
// but the last is completed, the last is in progress. This infers progress
// from stack depth, not an authoritative status feed; when the stack is
// empty the declared pipeline is shown instead, all pending. Steps link to
// agents by case-insensitive name equality.
func normalizePlan(p SnapshotPayload, agents []Agent) []PlanStep {
	stack := coerceStrings(p.SupervisorStack)

	related := func(title string) string {
		for _, a := range agents {
			if strings.EqualFold(a.Name, title) {
				return a.ID
			}
		}
		return ""
	}

	if len(stack) == 0 {
		pipeline := coerceStrings(p.AgentPipeline)
		steps := make([]PlanStep, 0, len(pipeline))
		for _, title := range pipeline {
			steps = append(steps, PlanStep{
				ID:             SanitizeID(title),
				Title:          title,
				Status:         StepPending,
				RelatedAgentID: related(title),
			})
		}
		return steps
	}

	steps := make([]PlanStep, 0, len(stack))
	for i, title := range stack {
		status := StepCompleted
		if i == len(stack)-1 {
			status = StepInProgress
		}
		steps = append(steps, PlanStep{
			ID:             SanitizeID(title),
			Title:          title,
			Status:         status,
			RelatedAgentID: related(title),
		})
	}
	return steps
}

func normalizeSummary(p SnapshotPayload, agents []Agent, quality Quality) Summary {
	s := Summary{
		CurrentDocument: coerceString(p.CurrentDocument),
		Processed:       coerceInt(p.Processed),
		Total:           coerceInt(p.Total),
		TimeOnDocument:  coerceFloat(p.TimeOnDocument),
		LastLogAge:      coerceFloat(p.LastLogAge),
		AlertMessages:   []string{},
	}
	if f := coerceFloat(p.Progress); f != nil {
		s.Progress = *f
	}

	for _, raw := range p.RecentErrors {
		if msg := coerceMessage(raw); msg != "" {
			s.AlertMessages = append(s.AlertMessages, msg)
		}
		s.Errors++
	}
	s.Warnings = len(p.RecentWarnings)

	sev := SeverityNormal
	if s.Errors > 0 {
		sev = SeverityCritical
	} else if s.Warnings > 0 {
		sev = SeverityWarning
	}
	for _, a := range agents {
		sev = MaxSeverity(sev, StatusSeverity(a.Status))
	}
	for _, m := range quality.Metrics {
		sev = MaxSeverity(sev, m.Severity)
	}
	s.Severity = sev
	return s
}
