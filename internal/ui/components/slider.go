package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/mediashell/internal/playback"
)

// VolumeStep is the slider granularity
const VolumeStep = 0.01

// VolumeSlider is a horizontal 0..1 slider
type VolumeSlider struct {
	Width      int
	Value      float64
	Muted      bool
	KnobStyle  lipgloss.Style
	TrackStyle lipgloss.Style
	LabelStyle lipgloss.Style
}

// NewVolumeSlider creates a slider of the given track width
func NewVolumeSlider(width int) VolumeSlider {
	return VolumeSlider{
		Width:      width,
		Value:      1,
		KnobStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5fd7")).Bold(true),
		TrackStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		LabelStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// Snap rounds v to the slider step within [0, 1]
func Snap(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Round(v/VolumeStep) * VolumeStep
	return max(0, min(1, v))
}

// ValueAt converts a click at column x, relative to the slider's left edge,
// into a volume
func (s VolumeSlider) ValueAt(x int) float64 {
	return Snap(playback.FractionAt(x, s.Width-1))
}

// View renders the slider followed by its percentage
func (s VolumeSlider) View() string {
	width := max(s.Width, 2)
	knob := int(math.Round(Snap(s.Value) * float64(width-1)))

	var sb strings.Builder
	sb.WriteString(s.TrackStyle.Render(strings.Repeat("─", knob)))
	sb.WriteString(s.KnobStyle.Render("●"))
	sb.WriteString(s.TrackStyle.Render(strings.Repeat("─", width-knob-1)))

	label := fmt.Sprintf(" %3d%%", int(math.Round(Snap(s.Value)*100)))
	if s.Muted {
		label = " mute"
	}
	sb.WriteString(s.LabelStyle.Render(label))
	return sb.String()
}
