package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pipewatch/pipewatch/internal/state"
	"github.com/pipewatch/pipewatch/internal/telemetry"
)

// severityStyle returns the style for a severity level.
func severityStyle(sev telemetry.Severity) lipgloss.Style {
	switch sev {
	case telemetry.SeverityCritical:
		return styles.SeverityCritical
	case telemetry.SeverityWarning:
		return styles.SeverityWarning
	default:
		return styles.SeverityNormal
	}
}

// connBadge renders the connection status badge.
func connBadge(conn state.ConnectionState) string {
	switch conn.Status {
	case state.ConnOpen:
		return styles.ConnOpen.Render("● LIVE")
	case state.ConnConnecting:
		return styles.ConnConnecting.Render("◌ CONNECTING")
	default:
		return styles.ConnClosed.Render("○ OFFLINE")
	}
}

// stepGlyph returns the marker for a plan step status.
func stepGlyph(status telemetry.PlanStepStatus) string {
	switch status {
	case telemetry.StepCompleted:
		return "✓"
	case telemetry.StepInProgress:
		return "▶"
	case telemetry.StepFailed:
		return "✗"
	default:
		return "·"
	}
}

// stepStyle returns the style for a plan step status.
func stepStyle(status telemetry.PlanStepStatus) lipgloss.Style {
	switch status {
	case telemetry.StepCompleted:
		return styles.StepCompleted
	case telemetry.StepInProgress:
		return styles.StepInProgress
	case telemetry.StepFailed:
		return styles.Error
	default:
		return styles.StepPending
	}
}

// formatEventLine formats one log event for the log pane.
func formatEventLine(ev telemetry.Event, width int) string {
	ts := styles.LogTime.Render(ev.Time.Format("15:04:05"))
	level := severityStyle(ev.Severity).Render(fmt.Sprintf("%-8s", strings.ToUpper(ev.Level)))

	prefix := ts + " " + level + " "
	msg := ev.Message
	if ev.AgentName != "" {
		msg = styles.LogAgent.Render("["+ev.AgentName+"] ") + msg
	}

	line := prefix + msg
	if lipgloss.Width(line) > width {
		// Truncate on the raw message, keeping the styled prefix intact.
		avail := width - lipgloss.Width(prefix)
		if avail > 3 {
			plain := ev.Message
			if ev.AgentName != "" {
				plain = "[" + ev.AgentName + "] " + plain
			}
			line = prefix + truncateString(plain, avail)
		} else {
			line = truncateString(ev.Time.Format("15:04:05")+" "+ev.Message, max(1, width))
		}
	}
	return line
}

// formatSeconds renders an optional seconds value, "n/a" when absent.
func formatSeconds(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1fs", *v)
}

// truncateString truncates a string to maxLen with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// wordWrap wraps text to fit within the given width.
func wordWrap(text string, width int) string {
	if width < 1 {
		width = 1
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		for len(line) > width {
			breakAt := width
			for j := width; j > 0; j-- {
				if line[j-1] == ' ' {
					breakAt = j
					break
				}
			}

			result.WriteString(strings.TrimRight(line[:breakAt], " "))
			result.WriteString("\n")
			line = strings.TrimLeft(line[breakAt:], " ")
		}
		result.WriteString(line)
	}

	return result.String()
}
