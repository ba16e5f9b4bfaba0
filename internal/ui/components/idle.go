package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultIdleTimeout is how long the controls stay visible without input
const DefaultIdleTimeout = 3 * time.Second

// IdleMsg fires when an idle countdown expires
type IdleMsg struct {
	gen uint64
}

// IdleTimer hides the control surface after a period without mouse or key
// activity. Every Touch restarts the countdown; ticks from an earlier
// countdown are ignored.
type IdleTimer struct {
	Timeout time.Duration
	Visible bool

	gen     uint64
	stopped bool
}

// NewIdleTimer creates a visible timer
func NewIdleTimer(timeout time.Duration) IdleTimer {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return IdleTimer{Timeout: timeout, Visible: true}
}

// Touch shows the controls and restarts the countdown
func (t *IdleTimer) Touch() tea.Cmd {
	if t.stopped {
		return nil
	}
	t.gen++
	t.Visible = true
	gen := t.gen
	return tea.Tick(t.Timeout, func(time.Time) tea.Msg {
		return IdleMsg{gen: gen}
	})
}

// Stop cancels the pending countdown and leaves the controls visible
func (t *IdleTimer) Stop() {
	t.gen++
	t.stopped = true
	t.Visible = true
}

// Update hides the controls when msg belongs to the latest countdown
func (t IdleTimer) Update(msg tea.Msg) IdleTimer {
	if m, ok := msg.(IdleMsg); ok && !t.stopped && m.gen == t.gen {
		t.Visible = false
	}
	return t
}
