package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/pipewatch/pipewatch/internal/assistant"
	"github.com/pipewatch/pipewatch/internal/insight"
	"github.com/pipewatch/pipewatch/internal/state"
	"github.com/pipewatch/pipewatch/internal/telemetry"
)

// FocusedPane represents which pane currently has keyboard focus.
type FocusedPane int

const (
	// FocusAgents means the agent table has focus (default).
	FocusAgents FocusedPane = iota
	// FocusLogs means the log pane has focus.
	FocusLogs
	// FocusAssistant means the assistant pane has focus.
	FocusAssistant
)

// Layout size constants.
const (
	// maxLogLines is how many recent events the log pane requests from
	// the store per refresh.
	maxLogLines = 200
	// minWidth is the minimum terminal width for the full layout.
	minWidth = 60
	// minHeight is the minimum terminal height for the full layout.
	minHeight = 16
	// agentsWidthPercent is the percentage of width for the agent table
	// when the plan panel is shown.
	agentsWidthPercent = 60
	// redrawInterval caps how often store changes trigger a redraw.
	redrawInterval = 100 * time.Millisecond
)

// viewData is the cached copy of store state the renderer works from.
// It is refreshed on every change notification and tick.
type viewData struct {
	summary  telemetry.Summary
	agents   []telemetry.Agent
	plan     []telemetry.PlanStep
	quality  telemetry.Quality
	events   []telemetry.Event
	insights []insight.Insight
	conn     state.ConnectionState
}

// model is the bubbletea model for the dashboard.
type model struct {
	store *state.Store

	// Cached view of the store
	data viewData

	// UI state
	width       int
	height      int
	focusedPane FocusedPane
	cursor      int
	scrollPos   int
	autoScroll  bool
	showPlan    bool

	// Assistant pane
	assistantPane AssistantPane
	assistantOpen bool

	// Redraw coalescing
	limiter *rate.Limiter

	// Callbacks
	onQuit func()
}

// newModel creates a new model reading from the given store.
func newModel(store *state.Store, client assistant.Client, onQuit func()) model {
	m := model{
		store:         store,
		autoScroll:    true,
		showPlan:      store.Layout().ShowPlan,
		assistantPane: NewAssistantPane(store, client),
		limiter:       rate.NewLimiter(rate.Every(redrawInterval), 1),
		onQuit:        onQuit,
	}
	m.refresh()
	return m
}

// refresh pulls a fresh copy of derived state from the store.
func (m *model) refresh() {
	m.data = viewData{
		summary:  m.store.Summary(),
		agents:   m.store.Agents(),
		plan:     m.store.Plan(),
		quality:  m.store.Quality(),
		events:   m.store.Events(maxLogLines),
		insights: m.store.Insights(),
		conn:     m.store.Connection(),
	}
	if m.cursor >= len(m.data.agents) {
		m.cursor = max(0, len(m.data.agents)-1)
	}
	if m.autoScroll {
		m.scrollPos = 0
	}
}

// togglePlan flips the plan panel and persists the layout preference.
func (m *model) togglePlan() {
	prefs := m.store.TogglePlan(nil)
	m.showPlan = prefs.ShowPlan
}

// toggleAssistant toggles the assistant pane visibility.
func (m *model) toggleAssistant() {
	m.assistantOpen = !m.assistantOpen
	if m.assistantOpen {
		m.focusedPane = FocusAssistant
		m.assistantPane.SetFocused(true)
	} else {
		m.focusedPane = FocusAgents
		m.assistantPane.SetFocused(false)
	}
}

// cycleFocus advances focus to the next visible pane.
func (m *model) cycleFocus() {
	switch m.focusedPane {
	case FocusAgents:
		m.focusedPane = FocusLogs
	case FocusLogs:
		if m.assistantOpen {
			m.focusedPane = FocusAssistant
		} else {
			m.focusedPane = FocusAgents
		}
	case FocusAssistant:
		m.focusedPane = FocusAgents
	}
	m.assistantPane.SetFocused(m.focusedPane == FocusAssistant)
}

// moveCursor shifts the agent cursor and publishes the highlight so other
// panes can mark the related plan step.
func (m *model) moveCursor(delta int) {
	if len(m.data.agents) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.data.agents) {
		m.cursor = len(m.data.agents) - 1
	}

	agentID := m.data.agents[m.cursor].ID
	stepID := ""
	for _, step := range m.data.plan {
		if step.RelatedAgentID == agentID {
			stepID = step.ID
			break
		}
	}
	m.store.SetHighlight(agentID, stepID)
}

// visibleLogLines returns the number of log lines that fit in the viewport.
func (m model) visibleLogLines() int {
	// Height minus: border (2), header (3), agents block, dividers,
	// insight strip, footer. The plan panel shares the agent rows
	// horizontally so it costs no extra height.
	reserved := 10 + len(m.data.agents)
	return max(3, m.height-reserved)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.store, m.limiter),
		doTick(),
		tea.EnterAltScreen,
	)
}

// Update and key handling live in update.go; View lives in view.go.
