package playback

import (
	"fmt"
	"io"

	"github.com/godbus/dbus/v5"
)

// HostBridge reaches the window hosting the player
//
//go:generate mockgen -destination=mocks/mock_bridge.go -package=mocks github.com/jscyril/mediashell/internal/playback HostBridge
type HostBridge interface {
	// RequestFullscreenToggle asks the host to flip its window fullscreen
	RequestFullscreenToggle() error
}

// ToggleFullscreenMessage is the message a desktop shell listens for
const ToggleFullscreenMessage = "toggle-fullscreen"

// xtermToggleFullscreen is the window manipulation sequence CSI 10;2 t
const xtermToggleFullscreen = "\x1b[10;2t"

// TerminalBridge asks the terminal emulator hosting the process to toggle
// fullscreen
type TerminalBridge struct {
	W io.Writer
}

func (b TerminalBridge) RequestFullscreenToggle() error {
	if _, err := io.WriteString(b.W, xtermToggleFullscreen); err != nil {
		return fmt.Errorf("write fullscreen request: %w", err)
	}
	return nil
}

// D-Bus names the desktop shell listens on
const (
	ShellObjectPath = dbus.ObjectPath("/io/mediashell/Shell")
	ShellSignal     = "io.mediashell.Shell.Message"
)

// SignalEmitter is the part of a D-Bus connection the bridge uses
type SignalEmitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
	Close() error
}

// DBusBridge sends the fullscreen message to a desktop shell as a session
// bus signal
type DBusBridge struct {
	conn SignalEmitter
}

// NewDBusBridge connects to the session bus
func NewDBusBridge() (*DBusBridge, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return NewDBusBridgeWith(conn), nil
}

// NewDBusBridgeWith uses an existing connection
func NewDBusBridgeWith(conn SignalEmitter) *DBusBridge {
	return &DBusBridge{conn: conn}
}

func (b *DBusBridge) RequestFullscreenToggle() error {
	if err := b.conn.Emit(ShellObjectPath, ShellSignal, ToggleFullscreenMessage); err != nil {
		return fmt.Errorf("emit %s: %w", ToggleFullscreenMessage, err)
	}
	return nil
}

// Close closes the bus connection
func (b *DBusBridge) Close() error {
	return b.conn.Close()
}
