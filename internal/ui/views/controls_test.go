package views

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/mediashell/api"
	"github.com/jscyril/mediashell/internal/playback"
)

func TestPlayLabelFollowsState(t *testing.T) {
	v := NewControlsView(80, playback.DefaultKeyMap())
	if v.PlayLabel() != "▶ Play" {
		t.Errorf("paused label = %q", v.PlayLabel())
	}

	v.SetState(api.PlaybackState{IsPlaying: true, Volume: 1}, 0, 0, false)
	if v.PlayLabel() != "❚❚ Pause" {
		t.Errorf("playing label = %q", v.PlayLabel())
	}
	if !strings.Contains(v.View(), "❚❚ Pause") {
		t.Error("view does not show the pause button")
	}
}

func TestHitTest(t *testing.T) {
	v := NewControlsView(80, nil)
	v.SetState(api.DefaultPlaybackState(), 0, time.Minute, true)

	playW := lipgloss.Width("[▶ Play]")
	muteW := lipgloss.Width("[Mute]")
	fullW := lipgloss.Width("[Fullscreen]")
	volStart := playW + 1 + muteW + 1 + fullW + lipgloss.Width(volumeLabel)

	tests := []struct {
		name string
		x, y int
		want Hit
	}{
		{"title row", 5, rowTitle, Hit{Target: TargetNone}},
		{"scrub start", 0, rowScrub, Hit{Target: TargetScrub, Offset: 0}},
		{"scrub middle", 30, rowScrub, Hit{Target: TargetScrub, Offset: 30}},
		{"scrub time label", v.Scrub.TrackWidth() + 2, rowScrub, Hit{Target: TargetNone}},
		{"play", 1, rowButtons, Hit{Target: TargetPlayPause, Offset: 1}},
		{"gap after play", playW, rowButtons, Hit{Target: TargetNone}},
		{"mute", playW + 1, rowButtons, Hit{Target: TargetMute, Offset: 0}},
		{"fullscreen", playW + muteW + 3, rowButtons, Hit{Target: TargetFullscreen, Offset: 1}},
		{"volume start", volStart, rowButtons, Hit{Target: TargetVolume, Offset: 0}},
		{"volume end", volStart + v.Volume.Width - 1, rowButtons, Hit{Target: TargetVolume, Offset: v.Volume.Width - 1}},
		{"help row", 0, rowHelp, Hit{Target: TargetNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.HitTest(tt.x, tt.y); got != tt.want {
				t.Errorf("HitTest(%d, %d) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestHitTestMatchesRenderedRow(t *testing.T) {
	v := NewControlsView(80, nil)
	v.SetState(api.PlaybackState{Volume: 0.5, IsMuted: true, IsFullScreen: true}, 0, 0, false)

	rows := strings.Split(v.View(), "\n")
	row := stripANSI(rows[rowButtons])
	idx := strings.Index(row, "[Unmute]")
	if idx < 0 {
		t.Fatalf("no unmute button in %q", row)
	}
	col := lipgloss.Width(row[:idx])

	if got := v.HitTest(col, rowButtons); got.Target != TargetMute {
		t.Errorf("click on rendered mute button hit %+v", got)
	}
}

func stripANSI(s string) string {
	var sb strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			esc = false
		case !esc:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
