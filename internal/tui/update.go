package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/pipewatch/pipewatch/internal/state"
)

// tickInterval is the interval for periodic refresh, covering relative
// timestamps that age even when no new data arrives.
const tickInterval = 2 * time.Second

// storeChangedMsg signals that the store has new derived state.
type storeChangedMsg struct{}

// tickMsg signals a periodic refresh tick.
type tickMsg time.Time

// waitForChange creates a command that blocks until the store signals a
// change, then waits out the redraw limiter so event floods coalesce into
// bounded repaints.
func waitForChange(store *state.Store, limiter *rate.Limiter) tea.Cmd {
	return func() tea.Msg {
		<-store.Notify()
		_ = limiter.Wait(context.Background())
		return storeChangedMsg{}
	}
}

// doTick creates a command that waits for the tick interval.
func doTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.assistantPane.SetSize(msg.Width-4, assistantPaneHeight)
		return m, nil

	case storeChangedMsg:
		m.refresh()
		return m, waitForChange(m.store, m.limiter)

	case tickMsg:
		m.refresh()
		return m, doTick()

	case assistantTickMsg, assistantResultMsg:
		if m.assistantOpen {
			var cmd tea.Cmd
			m.assistantPane, cmd = m.assistantPane.Update(msg)
			return m, cmd
		}
		return m, nil

	default:
		if m.assistantOpen && m.focusedPane == FocusAssistant {
			var cmd tea.Cmd
			m.assistantPane, cmd = m.assistantPane.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// handleKey processes keyboard input.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys: always work regardless of focus
	switch key {
	case "ctrl+c":
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case "tab":
		m.cycleFocus()
		return m, nil

	case "esc":
		if m.focusedPane == FocusAssistant && m.assistantOpen {
			var cmd tea.Cmd
			m.assistantPane, cmd = m.assistantPane.Update(msg)
			// The pane unfocuses itself when it had nothing to clear.
			if !m.assistantPane.IsFocused() {
				m.toggleAssistant()
			}
			return m, cmd
		}
		return m, nil
	}

	// When the assistant pane is focused, it owns the keyboard.
	if m.assistantOpen && m.focusedPane == FocusAssistant {
		var cmd tea.Cmd
		m.assistantPane, cmd = m.assistantPane.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case "p":
		m.togglePlan()
		return m, nil

	case "a":
		if m.assistantPane.Available() {
			m.toggleAssistant()
		}
		return m, nil

	case "R":
		m.store.SoftReset()
		m.refresh()
		return m, nil

	case "up", "k":
		if m.focusedPane == FocusLogs {
			m.autoScroll = false
			maxScroll := max(0, len(m.data.events)-m.visibleLogLines())
			if m.scrollPos < maxScroll {
				m.scrollPos++
			}
			return m, nil
		}
		m.moveCursor(-1)
		return m, nil

	case "down", "j":
		if m.focusedPane == FocusLogs {
			if m.scrollPos > 0 {
				m.scrollPos--
			}
			if m.scrollPos == 0 {
				m.autoScroll = true
			}
			return m, nil
		}
		m.moveCursor(1)
		return m, nil

	case "end", "G":
		if m.focusedPane == FocusLogs {
			m.autoScroll = true
			m.scrollPos = 0
		}
		return m, nil

	default:
		return m, nil
	}
}
