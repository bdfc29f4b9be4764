// Package tui provides the terminal dashboard for pipewatch using bubbletea.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pipewatch/pipewatch/internal/assistant"
	"github.com/pipewatch/pipewatch/internal/state"
)

// TUI is the terminal dashboard over a state store.
type TUI struct {
	store     *state.Store
	assistant assistant.Client
	onQuit    func()
}

// Option configures the TUI.
type Option func(*TUI)

// New creates a new TUI reading from the given store.
func New(store *state.Store, opts ...Option) *TUI {
	t := &TUI{store: store}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithAssistant enables the assistant pane backed by the given client.
func WithAssistant(c assistant.Client) Option {
	return func(t *TUI) {
		t.assistant = c
	}
}

// WithOnQuit sets the callback invoked when the user quits.
func WithOnQuit(fn func()) Option {
	return func(t *TUI) {
		t.onQuit = fn
	}
}

// Run starts the TUI and blocks until it exits or ctx is canceled. In
// non-interactive environments it falls back to line-by-line log output.
func (t *TUI) Run(ctx context.Context) error {
	if !isTerminal() {
		return t.runSimple(ctx)
	}

	m := newModel(t.store, t.assistant, t.onQuit)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		// Context cancellation is an orderly exit, not a failure.
		return nil
	}
	return err
}
