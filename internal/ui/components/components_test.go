package components

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestScrubBarFractionAt(t *testing.T) {
	bar := NewScrubBar(112) // 100 cells of track
	tests := []struct {
		x    int
		want float64
	}{
		{0, 0},
		{25, 0.25},
		{50, 0.5},
		{100, 1},
		{140, 1},
		{-3, 0},
	}
	for _, tt := range tests {
		if got := bar.FractionAt(tt.x); got != tt.want {
			t.Errorf("FractionAt(%d) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestScrubBarView(t *testing.T) {
	bar := NewScrubBar(40)
	bar.Progress = 50
	bar.SetPosition(90*time.Second, 3*time.Minute, true)

	out := bar.View()
	if w := lipgloss.Width(out); w != 40 {
		t.Errorf("width = %d, want 40", w)
	}
	if !strings.Contains(out, "01:30/03:00") {
		t.Errorf("missing time label in %q", out)
	}
	if n := strings.Count(out, "━"); n != bar.TrackWidth()/2 {
		t.Errorf("filled = %d, want %d", n, bar.TrackWidth()/2)
	}

	bar.SetPosition(0, 0, false)
	if !strings.Contains(bar.View(), "--:--") {
		t.Error("unknown duration should render as --:--")
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.004, 0},
		{0.333, 0.33},
		{1, 1},
		{1.5, 1},
		{-0.2, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := Snap(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Snap(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVolumeSlider(t *testing.T) {
	s := NewVolumeSlider(101)
	if got := s.ValueAt(50); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("ValueAt(50) = %v, want 0.5", got)
	}
	if got := s.ValueAt(200); got != 1 {
		t.Errorf("ValueAt past the end = %v, want 1", got)
	}

	s.Value = 0.5
	if !strings.Contains(s.View(), " 50%") {
		t.Errorf("view %q missing percentage", s.View())
	}
	s.Muted = true
	if !strings.Contains(s.View(), "mute") {
		t.Error("muted slider should say so")
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFileBrowserFiltersAllowList(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.mp3", "A.MP4", "notes.txt", ".hidden.wav", "clip.webm")
	if err := os.Mkdir(filepath.Join(dir, "albums"), 0755); err != nil {
		t.Fatal(err)
	}

	fb := NewFileBrowser(dir, 60, 20)

	var names []string
	for _, e := range fb.Entries {
		names = append(names, e.Name)
	}
	want := []string{"..", "albums", "A.MP4", "b.mp3", "clip.webm"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("entries = %v, want %v", names, want)
	}
}

func TestFileBrowserChooseFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "song.flac")

	fb := NewFileBrowser(dir, 60, 20)
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyDown})
	fb, cmd := fb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on a file should produce a message")
	}
	msg, ok := cmd().(FileChosenMsg)
	if !ok || msg.Path != filepath.Join(dir, "song.flac") {
		t.Errorf("msg = %#v", msg)
	}

	_, cmd = fb.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if _, ok := cmd().(BrowserCancelledMsg); !ok {
		t.Error("esc should cancel the browser")
	}
}

func TestFileBrowserNavigate(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	fb := NewFileBrowser(dir, 60, 20)
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyDown})
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if fb.CurrentPath != sub {
		t.Fatalf("path = %s, want %s", fb.CurrentPath, sub)
	}
	fb, _ = fb.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if fb.CurrentPath != dir {
		t.Errorf("path = %s, want %s", fb.CurrentPath, dir)
	}
}

func TestDropZonePaste(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "my song.mp3")
	path := filepath.Join(dir, "my song.mp3")

	tests := []struct {
		name   string
		inline bool
		check  func(t *testing.T, m DropMsg)
	}{
		{"path", false, func(t *testing.T, m DropMsg) {
			if m.Locator != path {
				t.Errorf("locator = %q, want %q", m.Locator, path)
			}
		}},
		{"inline", true, func(t *testing.T, m DropMsg) {
			if !strings.HasPrefix(m.Locator, "data:audio/mpeg;base64,") {
				t.Errorf("locator = %q, want a data URL", m.Locator)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := NewDropZone(60, 12, tt.inline)
			pasted := "'" + path + "'"
			z, cmd := z.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(pasted), Paste: true})
			if cmd == nil {
				t.Fatal("paste should submit")
			}
			if !z.Empty() {
				t.Error("input should be cleared after submit")
			}

			var drop DropMsg
			found := false
			for _, m := range collect(cmd) {
				if d, ok := m.(DropMsg); ok {
					drop, found = d, true
				}
			}
			if !found {
				t.Fatal("no DropMsg produced")
			}
			if drop.Filename != "my song.mp3" {
				t.Errorf("filename = %q", drop.Filename)
			}
			tt.check(t, drop)
		})
	}
}

func TestDropZoneTypedMissingFile(t *testing.T) {
	z := NewDropZone(60, 12, false)
	z, _ = z.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/no/such/file.mp3")})
	_, cmd := z.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should submit")
	}
	if _, ok := cmd().(DropErrMsg); !ok {
		t.Error("missing file should produce DropErrMsg")
	}
}

func TestDropZoneView(t *testing.T) {
	z := NewDropZone(60, 12, false)
	if !strings.Contains(z.View(), "Drag & Drop File Here") {
		t.Error("drop zone prompt missing")
	}
}

// collect runs cmd and flattens batches
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}
