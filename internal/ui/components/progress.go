package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/mediashell/internal/playback"
)

// ScrubBar shows playback progress and maps clicks to seek fractions
type ScrubBar struct {
	Width       int
	Progress    float64 // 0..100
	Current     time.Duration
	Total       time.Duration
	TotalKnown  bool
	BarChar     string
	EmptyChar   string
	ShowTime    bool
	FilledStyle lipgloss.Style
	EmptyStyle  lipgloss.Style
	TimeStyle   lipgloss.Style
}

// NewScrubBar creates a scrub bar
func NewScrubBar(width int) ScrubBar {
	return ScrubBar{
		Width:       width,
		BarChar:     "━",
		EmptyChar:   "─",
		ShowTime:    true,
		FilledStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#3264ff")),
		EmptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		TimeStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// SetPosition records the element position for the time label
func (p *ScrubBar) SetPosition(current, total time.Duration, known bool) {
	p.Current = current
	p.Total = total
	p.TotalKnown = known
}

// TrackWidth is the number of cells of the clickable bar
func (p ScrubBar) TrackWidth() int {
	w := p.Width
	if p.ShowTime {
		w -= 12 // " MM:SS/MM:SS"
	}
	return max(w, 10)
}

// FractionAt converts a click at column x, relative to the bar's left
// edge, into a seek fraction
func (p ScrubBar) FractionAt(x int) float64 {
	return playback.FractionAt(x, p.TrackWidth())
}

// View renders the bar
func (p ScrubBar) View() string {
	var sb strings.Builder

	width := p.TrackWidth()
	filled := int(float64(width) * max(0, min(100, p.Progress)) / 100)

	sb.WriteString(p.FilledStyle.Render(strings.Repeat(p.BarChar, filled)))
	sb.WriteString(p.EmptyStyle.Render(strings.Repeat(p.EmptyChar, width-filled)))

	if p.ShowTime {
		total := "--:--"
		if p.TotalKnown {
			total = formatDuration(p.Total)
		}
		sb.WriteString(p.TimeStyle.Render(" " + formatDuration(p.Current) + "/" + total))
	}

	return sb.String()
}

// formatDuration formats a duration as MM:SS
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d", m, s)
}
