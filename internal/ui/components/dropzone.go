package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/mediashell/internal/source"
)

// DropMsg carries a dropped file
type DropMsg struct {
	Locator  string
	Filename string
}

// DropErrMsg reports a payload that could not be used
type DropErrMsg struct {
	Err error
}

// DropZone accepts files dragged onto the terminal. Terminals paste the
// dropped path, so the zone submits on a bracketed paste or on enter.
type DropZone struct {
	Width  int
	Height int
	Inline bool
	Input  textinput.Model
	Err    error

	BoxStyle   lipgloss.Style
	TitleStyle lipgloss.Style
	HintStyle  lipgloss.Style
	ErrStyle   lipgloss.Style
}

// NewDropZone creates a focused drop zone. With inline set the dropped file
// is read into memory instead of being referenced by path.
func NewDropZone(width, height int, inline bool) DropZone {
	in := textinput.New()
	in.Placeholder = "or paste a path and press enter"
	in.Prompt = "› "
	in.Focus()

	return DropZone{
		Width:  width,
		Height: height,
		Inline: inline,
		Input:  in,
		BoxStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Align(lipgloss.Center, lipgloss.Center),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		HintStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		ErrStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Empty reports whether nothing has been typed yet
func (z DropZone) Empty() bool {
	return z.Input.Value() == ""
}

// Update feeds key and paste input to the path field
func (z DropZone) Update(msg tea.Msg) (DropZone, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return z, nil
	}
	if km.Type == tea.KeyEnter {
		return z.submit()
	}

	var cmd tea.Cmd
	z.Input, cmd = z.Input.Update(km)
	if km.Paste {
		var submit tea.Cmd
		z, submit = z.submit()
		return z, tea.Batch(cmd, submit)
	}
	return z, cmd
}

func (z DropZone) submit() (DropZone, tea.Cmd) {
	payload := z.Input.Value()
	z.Input.Reset()
	if strings.TrimSpace(payload) == "" {
		return z, nil
	}
	z.Err = nil
	inline := z.Inline
	return z, func() tea.Msg {
		return decodeDrop(payload, inline)
	}
}

func decodeDrop(payload string, inline bool) tea.Msg {
	locator, name, err := source.DecodeDrop(payload)
	if err != nil {
		return DropErrMsg{Err: err}
	}
	if inline {
		locator, name, err = source.InlineDrop(locator)
		if err != nil {
			return DropErrMsg{Err: err}
		}
	}
	return DropMsg{Locator: locator, Filename: name}
}

// View renders the drop target
func (z DropZone) View() string {
	var sb strings.Builder
	sb.WriteString(z.TitleStyle.Render("Drag & Drop File Here"))
	sb.WriteString("\n\n")
	sb.WriteString(z.Input.View())
	sb.WriteString("\n\n")
	sb.WriteString(z.HintStyle.Render(fmt.Sprintf("[o] Open file  [q] Quit   %s",
		strings.Join(source.SupportedExtensions(), " "))))
	if z.Err != nil {
		sb.WriteString("\n")
		sb.WriteString(z.ErrStyle.Render("Error: " + z.Err.Error()))
	}

	return z.BoxStyle.
		Width(max(z.Width-2, 10)).
		Height(max(z.Height-2, 5)).
		Render(sb.String())
}
