package tui

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"
)

// safeWidth clamps a width to at least 1.
func safeWidth(w int) int {
	if w < 1 {
		return 1
	}
	return w
}

// safeScroll clamps a scroll offset so the visible window stays in range.
func safeScroll(pos, total, visible int) int {
	maxScroll := total - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	if pos > maxScroll {
		return maxScroll
	}
	if pos < 0 {
		return 0
	}
	return pos
}

// isTerminal returns true if both stdout and stdin are TTYs.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// runSimple provides line-by-line output for non-interactive environments.
// It prints new log events as the store signals changes. Exits when ctx is
// canceled.
func (t *TUI) runSimple(ctx context.Context) error {
	seen := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.store.Notify():
			events := t.store.Events(maxLogLines)
			// Events come newest first; print unseen ones oldest first.
			for i := len(events) - 1; i >= 0; i-- {
				ev := events[i]
				if seen[ev.ID] {
					continue
				}
				seen[ev.ID] = true
				agent := ""
				if ev.AgentName != "" {
					agent = "[" + ev.AgentName + "] "
				}
				fmt.Printf("%s %-8s %s%s\n",
					ev.Time.Format("15:04:05"), ev.Level, agent, ev.Message)
			}
		}
	}
}
