package playback

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/jscyril/mediashell/internal/config"
)

const (
	// VolumeStep is the volume change per arrow key press
	VolumeStep = 0.1
	// SeekStep is the seek distance per arrow key press
	SeekStep = 10 * time.Second
)

// KeyMap holds the transport shortcuts
type KeyMap struct {
	PlayPause      key.Binding
	Mute           key.Binding
	Fullscreen     key.Binding
	ExitFullscreen key.Binding
	VolumeUp       key.Binding
	VolumeDown     key.Binding
	SeekForward    key.Binding
	SeekBack       key.Binding
}

// NewKeyMap builds bindings from the configured key names
func NewKeyMap(k config.KeyMap) KeyMap {
	return KeyMap{
		PlayPause:      binding(k.PlayPause, "play/pause"),
		Mute:           binding(k.Mute, "mute"),
		Fullscreen:     binding(k.Fullscreen, "fullscreen"),
		ExitFullscreen: binding(k.ExitFullscreen, "exit fullscreen"),
		VolumeUp:       binding(k.VolumeUp, "volume up"),
		VolumeDown:     binding(k.VolumeDown, "volume down"),
		SeekForward:    binding(k.SeekForward, "+10s"),
		SeekBack:       binding(k.SeekBack, "-10s"),
	}
}

// DefaultKeyMap returns the stock bindings
func DefaultKeyMap() KeyMap {
	return NewKeyMap(config.GetDefaultConfig().KeyBindings)
}

func binding(keys []string, desc string) key.Binding {
	var names, matched []string
	for _, k := range keys {
		matched = append(matched, k)
		if k == " " || k == "space" {
			// terminals report the space bar either way
			matched = append(matched, " ", "space")
			k = "space"
		}
		names = append(names, k)
	}
	return key.NewBinding(
		key.WithKeys(matched...),
		key.WithHelp(strings.Join(names, "/"), desc),
	)
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.SeekBack, k.SeekForward, k.Mute, k.Fullscreen}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Mute, k.Fullscreen, k.ExitFullscreen},
		{k.VolumeUp, k.VolumeDown, k.SeekForward, k.SeekBack},
	}
}
