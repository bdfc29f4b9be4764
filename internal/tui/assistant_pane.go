package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pipewatch/pipewatch/internal/assistant"
	"github.com/pipewatch/pipewatch/internal/state"
)

const (
	// assistantPaneHeight is the total height of the assistant pane.
	assistantPaneHeight = 10
	// assistantInputHeight is the height of the question input textarea.
	assistantInputHeight = 2
	// assistantTickInterval is the interval for updating elapsed time
	// during queries.
	assistantTickInterval = 100 * time.Millisecond
	// assistantQueryTimeout bounds one assistant request.
	assistantQueryTimeout = 60 * time.Second
)

// AssistantPane is a TUI component for asking the analysis assistant
// questions about the current dashboard state.
type AssistantPane struct {
	store     *state.Store
	client    assistant.Client
	input     textarea.Model
	spinner   spinner.Model
	response  string
	loading   bool
	startedAt time.Time
	errorMsg  string
	width     int
	height    int
	focused   bool
}

// assistantTickMsg signals a tick for updating elapsed time.
type assistantTickMsg time.Time

// assistantResultMsg carries the result of an assistant query.
type assistantResultMsg struct {
	response string
	err      error
}

// NewAssistantPane creates a new AssistantPane backed by the given client.
// A nil client disables the pane.
func NewAssistantPane(store *state.Store, client assistant.Client) AssistantPane {
	ta := textarea.New()
	ta.Placeholder = "Ask about the pipeline..."
	ta.SetHeight(assistantInputHeight)
	ta.CharLimit = 500
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return AssistantPane{
		store:   store,
		client:  client,
		input:   ta,
		spinner: sp,
	}
}

// Available returns true if an assistant client is configured.
func (p AssistantPane) Available() bool {
	return p.client != nil
}

// Update handles messages and returns the updated pane and any commands.
func (p AssistantPane) Update(msg tea.Msg) (AssistantPane, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return p.handleKey(msg)

	case assistantTickMsg:
		if p.loading {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			cmds = append(cmds, cmd, p.tickCmd())
		}
		return p, tea.Batch(cmds...)

	case assistantResultMsg:
		p.loading = false
		if msg.err != nil {
			p.errorMsg = msg.err.Error()
			p.response = ""
		} else {
			p.errorMsg = ""
			p.response = msg.response
		}
		return p, nil

	case spinner.TickMsg:
		if p.loading {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			return p, cmd
		}
		return p, nil

	default:
		if p.focused && !p.loading {
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			cmds = append(cmds, cmd)
		}
		return p, tea.Batch(cmds...)
	}
}

// handleKey processes keyboard input.
func (p AssistantPane) handleKey(msg tea.KeyMsg) (AssistantPane, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if !p.loading && strings.TrimSpace(p.input.Value()) != "" {
			return p.submitQuestion()
		}
		return p, nil

	case "esc":
		if p.errorMsg != "" {
			p.errorMsg = ""
			return p, nil
		}
		if p.input.Value() != "" {
			p.input.Reset()
			return p, nil
		}
		// Nothing to clear; unfocus so the parent closes the pane.
		p.SetFocused(false)
		return p, nil

	default:
		if !p.loading {
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return p, cmd
		}
		return p, nil
	}
}

// submitQuestion starts an assistant query with the current dashboard
// state as context.
func (p AssistantPane) submitQuestion() (AssistantPane, tea.Cmd) {
	question := strings.TrimSpace(p.input.Value())
	if question == "" {
		return p, nil
	}

	p.loading = true
	p.startedAt = time.Now()
	p.errorMsg = ""
	p.response = ""

	return p, tea.Batch(p.spinner.Tick, p.queryCmd(question), p.tickCmd())
}

// queryCmd returns a command that executes the assistant query.
func (p AssistantPane) queryCmd(question string) tea.Cmd {
	return func() tea.Msg {
		if p.client == nil {
			return assistantResultMsg{err: fmt.Errorf("assistant not configured")}
		}

		dashCtx := assistant.ComposeContext(
			p.store.Summary(),
			p.store.Agents(),
			p.store.Quality(),
			p.store.Insights(),
		)

		ctx, cancel := context.WithTimeout(context.Background(), assistantQueryTimeout)
		defer cancel()

		response, err := p.client.Ask(ctx, question, dashCtx)
		return assistantResultMsg{response: response, err: err}
	}
}

// tickCmd returns a command that sends a tick message.
func (p AssistantPane) tickCmd() tea.Cmd {
	return tea.Tick(assistantTickInterval, func(t time.Time) tea.Msg {
		return assistantTickMsg(t)
	})
}

// View renders the assistant pane.
func (p AssistantPane) View() string {
	if p.width == 0 {
		return ""
	}

	contentWidth := safeWidth(p.width)

	var sections []string

	p.input.SetWidth(contentWidth)
	sections = append(sections, p.input.View())
	sections = append(sections, p.renderStatusBar(contentWidth))

	responseHeight := p.height - assistantInputHeight - 2
	sections = append(sections, p.renderResponse(contentWidth, responseHeight))

	return strings.Join(sections, "\n")
}

// renderStatusBar renders the status bar with loading state or error.
func (p AssistantPane) renderStatusBar(width int) string {
	if p.loading {
		elapsed := time.Since(p.startedAt).Round(100 * time.Millisecond)
		status := fmt.Sprintf("%s Asking assistant... (%s elapsed)", p.spinner.View(), elapsed)
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Width(width).
			Render(status)
	}

	if p.errorMsg != "" {
		return styles.Error.Width(width).Render("Error: " + truncateString(p.errorMsg, width-7))
	}

	hint := "Enter: ask | Esc: clear"
	return styles.Footer.Width(width).Render(hint)
}

// renderResponse renders the response area.
func (p AssistantPane) renderResponse(width, height int) string {
	if height < 1 {
		height = 1
	}

	if p.response == "" {
		placeholder := "Answer will appear here..."
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(width).
			Height(height).
			Render(placeholder)
	}

	wrapped := wordWrap(p.response, width)
	lines := strings.Split(wrapped, "\n")

	if len(lines) > height {
		lines = lines[:height]
		lines[height-1] = lines[height-1][:max(0, len(lines[height-1])-3)] + "..."
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// SetSize updates the pane dimensions.
func (p *AssistantPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.SetWidth(safeWidth(width))
}

// SetFocused updates the focus state.
func (p *AssistantPane) SetFocused(focused bool) {
	p.focused = focused
	if focused {
		p.input.Focus()
	} else {
		p.input.Blur()
	}
}

// IsFocused returns true if the pane is focused.
func (p AssistantPane) IsFocused() bool {
	return p.focused
}

// IsLoading returns true if a query is in progress.
func (p AssistantPane) IsLoading() bool {
	return p.loading
}
