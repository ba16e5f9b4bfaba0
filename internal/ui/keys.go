package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/jscyril/mediashell/internal/config"
	"github.com/jscyril/mediashell/internal/playback"
)

// appKeys adds the shell's own shortcuts to the transport bindings
type appKeys struct {
	playback.KeyMap
	Open key.Binding
	Quit key.Binding
}

func newAppKeys(transport playback.KeyMap, k config.KeyMap) appKeys {
	return appKeys{
		KeyMap: transport,
		Open: key.NewBinding(
			key.WithKeys(k.Open...),
			key.WithHelp(strings.Join(k.Open, "/"), "open"),
		),
		Quit: key.NewBinding(
			key.WithKeys(k.Quit...),
			key.WithHelp(strings.Join(k.Quit, "/"), "quit"),
		),
	}
}

func (k appKeys) ShortHelp() []key.Binding {
	return append(k.KeyMap.ShortHelp(), k.Open, k.Quit)
}

func (k appKeys) FullHelp() [][]key.Binding {
	return append(k.KeyMap.FullHelp(), []key.Binding{k.Open, k.Quit})
}
