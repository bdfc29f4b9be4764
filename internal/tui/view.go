package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pipewatch/pipewatch/internal/telemetry"
)

// View implements tea.Model. This renders the full dashboard display.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.width < minWidth || m.height < minHeight {
		return m.renderTooSmall()
	}

	w := safeWidth(m.width - 4) // Account for container borders

	var sections []string
	sections = append(sections, m.renderHeader(w))
	sections = append(sections, m.renderDivider(w))
	sections = append(sections, m.renderAgentsBlock(w))
	sections = append(sections, m.renderDivider(w))
	sections = append(sections, m.renderQualityLine(w))
	sections = append(sections, m.renderInsights(w))
	sections = append(sections, m.renderDivider(w))
	sections = append(sections, m.renderLogs(w))
	if m.assistantOpen {
		sections = append(sections, m.renderDivider(w))
		sections = append(sections, m.renderAssistant(w))
	}
	sections = append(sections, m.renderDivider(w))
	sections = append(sections, m.renderFooter(w))

	content := strings.Join(sections, "\n")

	rendered := styles.Container.
		Width(safeWidth(m.width - 2)).
		Render(content)

	return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, rendered)
}

// renderHeader renders the summary header: document, progress, severity
// and connection badges, error/warning counters.
func (m model) renderHeader(w int) string {
	s := m.data.summary

	// Line 1: document and connection badge
	doc := s.CurrentDocument
	if doc == "" {
		doc = "no active document"
	}
	docText := styles.Document.Render(truncateString("doc: "+doc, max(10, w-16)))
	badge := connBadge(m.data.conn)
	line1 := joinEnds(docText, badge, w)

	// Line 2: progress and severity
	progress := styles.Progress.Render(fmt.Sprintf("%d/%d documents (%.1f%%)",
		s.Processed, s.Total, s.Progress))
	sev := severityStyle(s.Severity).Render(strings.ToUpper(s.Severity.String()))
	line2 := joinEnds(progress, sev, w)

	// Line 3: timers and counters
	timers := styles.Counter.Render(fmt.Sprintf("on document: %s  last log: %s",
		formatSeconds(s.TimeOnDocument), formatSeconds(s.LastLogAge)))
	counters := styles.Counter.Render(fmt.Sprintf("errors: %d  warnings: %d",
		s.Errors, s.Warnings))
	line3 := joinEnds(timers, counters, w)

	return strings.Join([]string{line1, line2, line3}, "\n")
}

// renderAgentsBlock renders the agent table, with the plan panel beside it
// when enabled.
func (m model) renderAgentsBlock(w int) string {
	if !m.showPlan || len(m.data.plan) == 0 {
		return m.renderAgentTable(w)
	}

	agentsWidth := w * agentsWidthPercent / 100
	planWidth := w - agentsWidth - 1

	agents := m.renderAgentTable(agentsWidth)
	plan := m.renderPlan(planWidth)

	return lipgloss.JoinHorizontal(lipgloss.Top, agents, " ", plan)
}

// renderAgentTable renders one row per agent with status and stats.
func (m model) renderAgentTable(w int) string {
	if len(m.data.agents) == 0 {
		return styles.Counter.Render("no agents reported yet")
	}

	var rows []string
	for i, a := range m.data.agents {
		marker := "  "
		if m.focusedPane == FocusAgents && i == m.cursor {
			marker = "> "
		}

		name := a.Name
		if a.Active {
			name = styles.AgentActive.Render(name)
		} else {
			name = styles.AgentName.Render(name)
		}

		status := severityStyle(telemetry.StatusSeverity(a.Status)).Render(string(a.Status))
		stats := styles.Counter.Render(fmt.Sprintf("%d runs  %.1fs avg  %d fail",
			a.Executions, a.AvgTime, a.Failures))

		row := fmt.Sprintf("%s%s  %s  %s", marker, name, status, stats)
		if m.focusedPane == FocusAgents && i == m.cursor {
			row = styles.AgentSelected.Render(stripANSIPad(row, w))
		}
		rows = append(rows, truncateRendered(row, w))
	}
	return strings.Join(rows, "\n")
}

// renderPlan renders the supervisor plan panel.
func (m model) renderPlan(w int) string {
	highlight := m.store.CurrentHighlight()

	var rows []string
	for _, step := range m.data.plan {
		glyph := stepGlyph(step.Status)
		line := fmt.Sprintf("%s %s", glyph, step.Title)

		style := stepStyle(step.Status)
		if highlight.StepID != "" && step.ID == highlight.StepID {
			style = styles.StepHighlight
		}
		rows = append(rows, style.Render(truncateString(line, max(4, w))))
	}
	if len(rows) == 0 {
		return styles.Counter.Render("no plan")
	}
	return strings.Join(rows, "\n")
}

// renderQualityLine renders the quality metrics in a single row.
func (m model) renderQualityLine(w int) string {
	if len(m.data.quality.Metrics) == 0 {
		return styles.Counter.Render("quality: no metrics")
	}

	var parts []string
	for _, qm := range m.data.quality.Metrics {
		part := fmt.Sprintf("%s %s", qm.Label, qm.Display)
		parts = append(parts, severityStyle(qm.Severity).Render(part))
	}
	line := strings.Join(parts, styles.Divider.Render("  │  "))
	return truncateRendered(line, w)
}

// renderInsights renders the insight strip, one line per insight.
func (m model) renderInsights(w int) string {
	if len(m.data.insights) == 0 {
		return styles.Counter.Render("no insights")
	}

	var rows []string
	for _, ins := range m.data.insights {
		line := "• " + ins.Message
		style := styles.Insight
		if ins.Severity == telemetry.SeverityCritical {
			style = styles.SeverityCritical
		}
		rows = append(rows, style.Render(truncateString(line, max(4, w))))
	}
	return strings.Join(rows, "\n")
}

// renderLogs renders the bounded log pane, newest entries first.
func (m model) renderLogs(w int) string {
	visible := m.visibleLogLines()
	if m.assistantOpen {
		visible = max(3, visible-assistantPaneHeight-1)
	}

	if len(m.data.events) == 0 {
		placeholder := "Waiting for log events..."
		padding := strings.Repeat("\n", visible/2)
		return padding + lipgloss.PlaceHorizontal(w, lipgloss.Center, placeholder) +
			strings.Repeat("\n", max(0, visible-visible/2-1))
	}

	scrollPos := safeScroll(m.scrollPos, len(m.data.events), visible)
	endPos := min(scrollPos+visible, len(m.data.events))
	visibleEvents := m.data.events[scrollPos:endPos]

	var lines []string
	for _, ev := range visibleEvents {
		lines = append(lines, formatEventLine(ev, w))
	}
	for len(lines) < visible {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderAssistant renders the assistant pane.
func (m model) renderAssistant(w int) string {
	m.assistantPane.SetSize(w, assistantPaneHeight)
	return m.assistantPane.View()
}

// renderDivider renders a horizontal divider.
func (m model) renderDivider(w int) string {
	return styles.Divider.Render(strings.Repeat("─", max(1, w)))
}

// renderFooter renders the key hint footer.
func (m model) renderFooter(w int) string {
	hints := "q: quit | tab: focus | p: plan | R: reset | ↑/↓: navigate"
	if m.assistantPane.Available() {
		hints += " | a: assistant"
	}
	return styles.Footer.Render(truncateString(hints, max(4, w)))
}

// renderTooSmall renders a minimal message for terminals that are too small.
func (m model) renderTooSmall() string {
	return fmt.Sprintf("Terminal too small (%dx%d). Need %dx%d minimum.",
		m.width, m.height, minWidth, minHeight)
}

// joinEnds places left and right text at opposite ends of a row.
func joinEnds(left, right string, w int) string {
	gap := max(1, w-lipgloss.Width(left)-lipgloss.Width(right))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), right)
}

// truncateRendered bounds a styled line to the given visual width.
func truncateRendered(line string, w int) string {
	if lipgloss.Width(line) <= w {
		return line
	}
	return lipgloss.NewStyle().MaxWidth(w).Render(line)
}

// stripANSIPad pads a row to the given width for full-row selection styling.
func stripANSIPad(row string, w int) string {
	pad := w - lipgloss.Width(row)
	if pad > 0 {
		return row + strings.Repeat(" ", pad)
	}
	return row
}
