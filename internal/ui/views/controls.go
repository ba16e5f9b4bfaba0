package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/mediashell/api"
	"github.com/jscyril/mediashell/internal/ui/components"
)

// Target is a clickable region of the control surface
type Target int

const (
	TargetNone Target = iota
	TargetScrub
	TargetPlayPause
	TargetMute
	TargetFullscreen
	TargetVolume
)

// Hit is the result of a click on the control surface. Offset is the
// column relative to the start of the target.
type Hit struct {
	Target Target
	Offset int
}

// Control surface rows
const (
	rowTitle = iota
	rowScrub
	rowButtons
	rowHelp

	ControlsHeight = rowHelp + 1
)

// volumeLabel precedes the slider on the button row
const volumeLabel = "  vol "

// ControlsView renders the transport bar. It only reflects the state it is
// given; clicks are resolved with HitTest and acted on by the caller.
type ControlsView struct {
	Width  int
	Title  string
	Kind   api.MediaKind
	State  api.PlaybackState
	Scrub  components.ScrubBar
	Volume components.VolumeSlider
	Help   help.Model
	Keys   help.KeyMap

	// Styles
	TitleStyle  lipgloss.Style
	StatusStyle lipgloss.Style
	ButtonStyle lipgloss.Style
	ActiveStyle lipgloss.Style
	LabelStyle  lipgloss.Style
}

// NewControlsView creates a control surface
func NewControlsView(width int, keys help.KeyMap) ControlsView {
	v := ControlsView{
		Width:  width,
		Scrub:  components.NewScrubBar(width),
		Volume: components.NewVolumeSlider(20),
		Help:   help.New(),
		Keys:   keys,
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		StatusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		ButtonStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		ActiveStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		LabelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
	}
	v.Help.Width = width
	return v
}

// SetWidth resizes the bar
func (v *ControlsView) SetWidth(w int) {
	v.Width = w
	v.Scrub.Width = w
	v.Help.Width = w
}

// SetState updates what the bar shows
func (v *ControlsView) SetState(s api.PlaybackState, current, total time.Duration, known bool) {
	v.State = s
	v.Scrub.Progress = s.ProgressFraction
	v.Scrub.SetPosition(current, total, known)
	v.Volume.Value = s.Volume
	v.Volume.Muted = s.IsMuted
}

type button struct {
	label  string
	target Target
	active bool
}

func (v ControlsView) buttons() []button {
	play := button{label: "▶ Play", target: TargetPlayPause}
	if v.State.IsPlaying {
		play = button{label: "❚❚ Pause", target: TargetPlayPause, active: true}
	}
	mute := button{label: "Mute", target: TargetMute}
	if v.State.IsMuted {
		mute = button{label: "Unmute", target: TargetMute, active: true}
	}
	full := button{label: "Fullscreen", target: TargetFullscreen}
	if v.State.IsFullScreen {
		full = button{label: "Exit Fullscreen", target: TargetFullscreen, active: true}
	}
	return []button{play, mute, full}
}

// PlayLabel returns the play/pause button label
func (v ControlsView) PlayLabel() string {
	return v.buttons()[0].label
}

// HitTest resolves a click at column x, row y relative to the top left
// of the control surface
func (v ControlsView) HitTest(x, y int) Hit {
	switch y {
	case rowScrub:
		if x >= 0 && x < v.Scrub.TrackWidth() {
			return Hit{Target: TargetScrub, Offset: x}
		}
	case rowButtons:
		col := 0
		for _, b := range v.buttons() {
			w := lipgloss.Width("[" + b.label + "]")
			if x >= col && x < col+w {
				return Hit{Target: b.target, Offset: x - col}
			}
			col += w + 1
		}
		col += lipgloss.Width(volumeLabel) - 1
		if x >= col && x < col+v.Volume.Width {
			return Hit{Target: TargetVolume, Offset: x - col}
		}
	}
	return Hit{Target: TargetNone}
}

// View renders the control surface
func (v ControlsView) View() string {
	var sb strings.Builder

	status := "⏸"
	if v.State.IsPlaying {
		status = "▶"
	}
	sb.WriteString(v.StatusStyle.Render(status + " "))
	title := v.Title
	if limit := v.Width - 2; limit > 3 && lipgloss.Width(title) > limit {
		title = string([]rune(title)[:limit-3]) + "..."
	}
	sb.WriteString(v.TitleStyle.Render(title))
	sb.WriteString("\n")

	sb.WriteString(v.Scrub.View())
	sb.WriteString("\n")

	for i, b := range v.buttons() {
		if i > 0 {
			sb.WriteString(" ")
		}
		style := v.ButtonStyle
		if b.active {
			style = v.ActiveStyle
		}
		sb.WriteString(style.Render("[" + b.label + "]"))
	}
	sb.WriteString(v.LabelStyle.Render(volumeLabel))
	sb.WriteString(v.Volume.View())
	sb.WriteString("\n")

	if v.Keys != nil {
		sb.WriteString(v.Help.View(v.Keys))
	}

	return sb.String()
}
