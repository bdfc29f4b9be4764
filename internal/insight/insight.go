// Package insight turns severity deviations into a short, deduplicated
// list of operator-readable anomaly messages.
package insight

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pipewatch/pipewatch/internal/baseline"
	"github.com/pipewatch/pipewatch/internal/telemetry"
)

// MaxInsights bounds the list produced by one evaluation cycle.
const MaxInsights = 5

// failureRateThreshold is the per-agent failure rate that warrants an
// insight.
const failureRateThreshold = 0.20

// Insight is one deduplicated, severity-tagged anomaly message.
type Insight struct {
	ID       string
	Message  string
	Severity telemetry.Severity
	Time     time.Time
}

// AgentReading pairs an agent with its latency evaluation for this cycle.
type AgentReading struct {
	Agent           telemetry.Agent
	LatencyRatio    float64
	LatencyBaseline *float64
}

// Generate produces at most MaxInsights ranked insights: agent latency and
// failure conditions first, then non-normal quality metrics. Duplicate
// message texts collapse to the first occurrence; ties resolve by
// insertion order.
func Generate(agents []AgentReading, metrics []telemetry.QualityMetric, now time.Time) []Insight {
	insights := make([]Insight, 0, MaxInsights)
	seen := make(map[string]bool)

	add := func(message string, severity telemetry.Severity) {
		if message == "" || seen[message] || len(insights) >= MaxInsights {
			return
		}
		seen[message] = true
		insights = append(insights, Insight{
			ID:       uuid.NewString(),
			Message:  message,
			Severity: severity,
			Time:     now,
		})
	}

	for _, r := range agents {
		if sev := baseline.LatencySeverity(r.LatencyRatio); sev != telemetry.SeverityNormal {
			add(latencyMessage(r), sev)
		}
		if rate := r.Agent.FailureRate(); rate >= failureRateThreshold {
			add(failureMessage(r.Agent, rate), telemetry.SeverityWarning)
		}
	}

	for _, m := range metrics {
		if m.Severity == telemetry.SeverityNormal {
			continue
		}
		add(metricMessage(m), m.Severity)
	}

	return insights
}

func latencyMessage(r AgentReading) string {
	increase := int(math.Round(r.LatencyRatio * 100))
	if r.LatencyBaseline != nil {
		return fmt.Sprintf("%s latency elevated: %.1fs avg vs %.1fs baseline (+%d%%)",
			r.Agent.Name, r.Agent.AvgTime, *r.LatencyBaseline, increase)
	}
	return fmt.Sprintf("%s latency elevated: %.1fs avg (+%d%%)",
		r.Agent.Name, r.Agent.AvgTime, increase)
}

func failureMessage(a telemetry.Agent, rate float64) string {
	return fmt.Sprintf("%s failing %.0f%% of executions (%d of %d)",
		a.Name, rate*100, a.Failures, a.Executions)
}

func metricMessage(m telemetry.QualityMetric) string {
	if m.Baseline != nil {
		return fmt.Sprintf("%s %s at %s (baseline %s)",
			m.Label, m.Severity, m.Display, telemetry.FormatMetric(m.ID, m.Baseline))
	}
	return fmt.Sprintf("%s %s at %s", m.Label, m.Severity, m.Display)
}
