package tui

import "github.com/charmbracelet/lipgloss"

// styles contains all lipgloss styles used by the dashboard.
var styles = struct {
	// Layout styles
	Container lipgloss.Style
	Divider   lipgloss.Style

	// Header styles
	Document lipgloss.Style
	Progress lipgloss.Style
	Counter  lipgloss.Style

	// Connection badge
	ConnOpen       lipgloss.Style
	ConnConnecting lipgloss.Style
	ConnClosed     lipgloss.Style

	// Severity colors
	SeverityNormal   lipgloss.Style
	SeverityWarning  lipgloss.Style
	SeverityCritical lipgloss.Style

	// Agent table
	AgentName     lipgloss.Style
	AgentSelected lipgloss.Style
	AgentActive   lipgloss.Style

	// Plan panel
	StepPending    lipgloss.Style
	StepInProgress lipgloss.Style
	StepCompleted  lipgloss.Style
	StepHighlight  lipgloss.Style

	// Log pane
	LogTime  lipgloss.Style
	LogAgent lipgloss.Style

	// Insight strip
	Insight lipgloss.Style

	// Footer style
	Footer lipgloss.Style

	// Errors
	Error lipgloss.Style

	// Focus indicators
	FocusedBorder   lipgloss.Style
	UnfocusedBorder lipgloss.Style
}{
	Container: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")),

	Divider: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	Document: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")),

	Progress: lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")),

	Counter: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	ConnOpen: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82")),

	ConnConnecting: lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")),

	ConnClosed: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196")),

	SeverityNormal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("114")),

	SeverityWarning: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("214")),

	SeverityCritical: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196")),

	AgentName: lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")),

	AgentSelected: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Background(lipgloss.Color("236")),

	AgentActive: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82")),

	StepPending: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	StepInProgress: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82")),

	StepCompleted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("114")),

	StepHighlight: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Background(lipgloss.Color("236")),

	LogTime: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	LogAgent: lipgloss.NewStyle().
		Foreground(lipgloss.Color("177")),

	Insight: lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")),

	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	FocusedBorder: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")),

	UnfocusedBorder: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")),
}
