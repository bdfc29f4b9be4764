// Package telemetry defines the canonical telemetry model and the tolerant
// normalization layer that converts raw snapshot and event payloads from the
// pipeline backend into it. Normalization never fails: every missing or
// malformed field has a defined fallback.
package telemetry

import "strings"

// Severity classifies a metric, agent, or the system as a whole.
// The ordering normal < warning < critical is load-bearing: system severity
// is the maximum over all contributing sources.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityWarning
	SeverityCritical
)

// String returns the wire representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "normal"
	}
}

// MaxSeverity returns the worst of the given severities, or SeverityNormal
// when called with no arguments.
func MaxSeverity(severities ...Severity) Severity {
	max := SeverityNormal
	for _, s := range severities {
		if s > max {
			max = s
		}
	}
	return max
}

// ParseLevel maps a raw log level string to a severity.
// Unknown levels map to normal.
func ParseLevel(level string) Severity {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "ERROR", "CRITICAL", "FATAL":
		return SeverityCritical
	case "WARNING", "WARN":
		return SeverityWarning
	default:
		return SeverityNormal
	}
}

// StatusSeverity maps an agent run status to a severity. Only known statuses
// carry weight; anything unrecognized is treated as normal so a new backend
// status string never raises a false alarm.
func StatusSeverity(status AgentStatus) Severity {
	switch status {
	case AgentFailed:
		return SeverityCritical
	case AgentRunning:
		return SeverityWarning
	default:
		return SeverityNormal
	}
}
