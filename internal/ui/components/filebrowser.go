package components

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/mediashell/api"
	"github.com/jscyril/mediashell/internal/source"
)

// FileEntry represents a file or directory in the browser
type FileEntry struct {
	Name  string
	Path  string
	IsDir bool
}

// FileChosenMsg is sent when a file is picked in the browser
type FileChosenMsg struct {
	Path string
}

// BrowserCancelledMsg is sent when the browser is dismissed
type BrowserCancelledMsg struct{}

// FileBrowser is the in-terminal open dialog. Only directories and files on
// the media allow-list are listed.
type FileBrowser struct {
	Width       int
	Height      int
	CurrentPath string
	Entries     []FileEntry
	Selected    int
	Offset      int
	ShowHidden  bool
	Err         error

	// Styles
	DirStyle      lipgloss.Style
	FileStyle     lipgloss.Style
	SelectedStyle lipgloss.Style
	PathStyle     lipgloss.Style
	BorderStyle   lipgloss.Style
	HelpStyle     lipgloss.Style
}

// NewFileBrowser creates a new file browser starting at the given path
func NewFileBrowser(startPath string, width, height int) FileBrowser {
	fb := FileBrowser{
		Width:  width,
		Height: height,
		DirStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true),
		FileStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")),
		SelectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("255")).
			Bold(true),
		PathStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
		HelpStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}

	// If startPath is empty, use the working directory
	if startPath == "" {
		if wd, err := os.Getwd(); err == nil {
			startPath = wd
		} else {
			startPath = "/"
		}
	}

	fb.Navigate(startPath)
	return fb
}

// Navigate changes to the specified directory
func (fb *FileBrowser) Navigate(path string) {
	fb.CurrentPath = path
	fb.Selected = 0
	fb.Offset = 0
	fb.Err = nil

	entries, err := os.ReadDir(path)
	if err != nil {
		fb.Err = err
		fb.Entries = nil
		return
	}

	fb.Entries = make([]FileEntry, 0, len(entries)+1)

	// Parent directory entry (unless at root)
	if parent := filepath.Dir(path); parent != path {
		fb.Entries = append(fb.Entries, FileEntry{Name: "..", Path: parent, IsDir: true})
	}

	var dirs, files []FileEntry
	for _, entry := range entries {
		if !fb.ShowHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		fullPath := filepath.Join(path, entry.Name())
		switch {
		case entry.IsDir():
			dirs = append(dirs, FileEntry{Name: entry.Name(), Path: fullPath, IsDir: true})
		case source.IsSupported(entry.Name()):
			files = append(files, FileEntry{Name: entry.Name(), Path: fullPath})
		}
	}

	byName := func(s []FileEntry) func(i, j int) bool {
		return func(i, j int) bool {
			return strings.ToLower(s[i].Name) < strings.ToLower(s[j].Name)
		}
	}
	sort.Slice(dirs, byName(dirs))
	sort.Slice(files, byName(files))

	// Directories first, then files
	fb.Entries = append(fb.Entries, dirs...)
	fb.Entries = append(fb.Entries, files...)
}

// Update handles input messages
func (fb FileBrowser) Update(msg tea.Msg) (FileBrowser, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return fb, nil
	}

	switch km.String() {
	case "up", "k":
		if fb.Selected > 0 {
			fb.Selected--
			fb.ensureVisible()
		}
	case "down", "j":
		if fb.Selected < len(fb.Entries)-1 {
			fb.Selected++
			fb.ensureVisible()
		}
	case "pgup":
		fb.Selected = max(fb.Selected-fb.visibleHeight(), 0)
		fb.ensureVisible()
	case "pgdown":
		fb.Selected = max(min(fb.Selected+fb.visibleHeight(), len(fb.Entries)-1), 0)
		fb.ensureVisible()
	case "home":
		fb.Selected = 0
		fb.ensureVisible()
	case "end":
		fb.Selected = max(len(fb.Entries)-1, 0)
		fb.ensureVisible()
	case "backspace":
		if parent := filepath.Dir(fb.CurrentPath); parent != fb.CurrentPath {
			fb.Navigate(parent)
		}
	case "~":
		if home, err := os.UserHomeDir(); err == nil {
			fb.Navigate(home)
		}
	case ".":
		fb.ShowHidden = !fb.ShowHidden
		fb.Navigate(fb.CurrentPath)
	case "enter":
		if path := fb.EnterSelected(); path != "" {
			return fb, func() tea.Msg { return FileChosenMsg{Path: path} }
		}
	case "esc":
		return fb, func() tea.Msg { return BrowserCancelledMsg{} }
	}
	return fb, nil
}

// SelectedEntry returns the currently selected entry, or nil if none
func (fb *FileBrowser) SelectedEntry() *FileEntry {
	if fb.Selected >= 0 && fb.Selected < len(fb.Entries) {
		return &fb.Entries[fb.Selected]
	}
	return nil
}

// EnterSelected handles Enter on the selected entry.
// Returns the file path if a file was selected, empty string if navigated to dir
func (fb *FileBrowser) EnterSelected() string {
	entry := fb.SelectedEntry()
	if entry == nil {
		return ""
	}

	if entry.IsDir {
		fb.Navigate(entry.Path)
		return ""
	}
	return entry.Path
}

// visibleHeight returns the number of visible items
func (fb *FileBrowser) visibleHeight() int {
	return max(fb.Height-6, 1) // border, path, count, help
}

// ensureVisible ensures the selected item is visible
func (fb *FileBrowser) ensureVisible() {
	visible := fb.visibleHeight()
	if fb.Selected < fb.Offset {
		fb.Offset = fb.Selected
	} else if fb.Selected >= fb.Offset+visible {
		fb.Offset = fb.Selected - visible + 1
	}
}

// View renders the file browser
func (fb FileBrowser) View() string {
	var sb strings.Builder

	sb.WriteString(fb.PathStyle.Render(fb.CurrentPath))
	sb.WriteString("\n")

	if fb.Err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		sb.WriteString(errorStyle.Render("Error: " + fb.Err.Error()))
		sb.WriteString("\n")
	}

	visible := fb.visibleHeight()
	end := min(fb.Offset+visible, len(fb.Entries))
	maxWidth := max(fb.Width-8, 8)

	for i := fb.Offset; i < end; i++ {
		entry := fb.Entries[i]

		line := entryIcon(entry) + " " + entry.Name
		if lipgloss.Width(line) > maxWidth {
			line = string([]rune(line)[:maxWidth-3]) + "..."
		}

		switch {
		case i == fb.Selected:
			sb.WriteString(fb.SelectedStyle.Render(line))
		case entry.IsDir:
			sb.WriteString(fb.DirStyle.Render(line))
		default:
			sb.WriteString(fb.FileStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	for i := end - fb.Offset; i < visible; i++ {
		sb.WriteString("\n")
	}

	files := 0
	for _, e := range fb.Entries {
		if !e.IsDir {
			files++
		}
	}
	sb.WriteString(fb.HelpStyle.Render(fmt.Sprintf("%d media files", files)))
	sb.WriteString("\n")
	sb.WriteString(fb.HelpStyle.Render("[enter] open  [backspace] up  [~] home  [.] hidden  [esc] cancel"))

	return fb.BorderStyle.Width(max(fb.Width-2, 10)).Render(sb.String())
}

func entryIcon(e FileEntry) string {
	switch {
	case e.IsDir:
		return "▸"
	case source.Classify(e.Name) == api.KindVideo:
		return "▶"
	default:
		return "♪"
	}
}
