package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/jscyril/mediashell/api"
	playerrors "github.com/jscyril/mediashell/pkg/errors"
)

// Config holds application configuration
type Config struct {
	DefaultVolume      float64                `json:"default_volume"`
	FullscreenStrategy api.FullscreenStrategy `json:"fullscreen_strategy"`
	HostBridge         string                 `json:"host_bridge"`
	FFTSize            int                    `json:"fft_size"`
	FrameRate          int                    `json:"frame_rate"`
	IdleTimeoutMS      int                    `json:"idle_timeout_ms"`
	Dialog             string                 `json:"dialog"`
	DropMode           string                 `json:"drop_mode"`
	StartDir           string                 `json:"start_dir"`
	MPVPath            string                 `json:"mpv_path"`
	SampleRate         int                    `json:"sample_rate"`
	LogFile            string                 `json:"log_file"`
	LogLevel           string                 `json:"log_level"`
	Theme              Theme                  `json:"theme"`
	KeyBindings        KeyMap                 `json:"key_bindings"`
}

// Theme holds the visualizer and control colours as #rrggbb strings
type Theme struct {
	Background string `json:"background"`
	UpperBars  string `json:"upper_bars"`
	LowerBars  string `json:"lower_bars"`
	Progress   string `json:"progress"`
	Accent     string `json:"accent"`
}

// KeyMap defines keyboard shortcuts
type KeyMap struct {
	PlayPause      []string `json:"play_pause"`
	Mute           []string `json:"mute"`
	Fullscreen     []string `json:"fullscreen"`
	ExitFullscreen []string `json:"exit_fullscreen"`
	VolumeUp       []string `json:"volume_up"`
	VolumeDown     []string `json:"volume_down"`
	SeekForward    []string `json:"seek_forward"`
	SeekBack       []string `json:"seek_back"`
	Open           []string `json:"open"`
	Quit           []string `json:"quit"`
}

// Host bridge, dialog and drop mode names
const (
	BridgeTerminal = "terminal"
	BridgeDBus     = "dbus"

	DialogBrowser = "browser"
	DialogZenity  = "zenity"

	DropPath   = "path"
	DropInline = "inline"
)

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		DefaultVolume:      1.0,
		FullscreenStrategy: api.FullscreenElement,
		HostBridge:         BridgeTerminal,
		FFTSize:            256,
		FrameRate:          60,
		IdleTimeoutMS:      3000,
		Dialog:             DialogBrowser,
		DropMode:           DropPath,
		MPVPath:            "mpv",
		SampleRate:         44100,
		LogFile:            filepath.Join(os.TempDir(), "mediashell.log"),
		LogLevel:           "info",
		Theme: Theme{
			Background: "#000000",
			UpperBars:  "#c83232",
			LowerBars:  "#32c832",
			Progress:   "#3264ff",
			Accent:     "#ff5fd7",
		},
		KeyBindings: KeyMap{
			PlayPause:      []string{" ", "p"},
			Mute:           []string{"m"},
			Fullscreen:     []string{"f"},
			ExitFullscreen: []string{"esc"},
			VolumeUp:       []string{"up"},
			VolumeDown:     []string{"down"},
			SeekForward:    []string{"right"},
			SeekBack:       []string{"left"},
			Open:           []string{"o"},
			Quit:           []string{"q", "ctrl+c"},
		},
	}
}

// IdleTimeout returns the control surface auto-hide delay
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMS) * time.Millisecond
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	if c.DefaultVolume < 0 || c.DefaultVolume > 1 {
		return fmt.Errorf("default_volume %v: %w", c.DefaultVolume, playerrors.ErrInvalidVolume)
	}
	switch c.FullscreenStrategy {
	case api.FullscreenElement, api.FullscreenHostWindow:
	default:
		return fmt.Errorf("unknown fullscreen_strategy %q", c.FullscreenStrategy)
	}
	switch c.HostBridge {
	case BridgeTerminal, BridgeDBus:
	default:
		return fmt.Errorf("unknown host_bridge %q", c.HostBridge)
	}
	switch c.Dialog {
	case DialogBrowser, DialogZenity:
	default:
		return fmt.Errorf("unknown dialog %q", c.Dialog)
	}
	switch c.DropMode {
	case DropPath, DropInline:
	default:
		return fmt.Errorf("unknown drop_mode %q", c.DropMode)
	}
	if c.FFTSize < 32 || c.FFTSize > 32768 || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("fft_size %d: %w", c.FFTSize, playerrors.ErrInvalidFFTSize)
	}
	if c.FrameRate <= 0 || c.FrameRate > 240 {
		return fmt.Errorf("frame_rate %d out of range 1..240", c.FrameRate)
	}
	if c.IdleTimeoutMS <= 0 {
		return fmt.Errorf("idle_timeout_ms must be positive")
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive")
	}
	return nil
}

// LoadConfig reads and unmarshals configuration from file.
// Missing fields keep their default values.
func LoadConfig(path string) (*Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(config *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists
func LoadOrCreate(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Save default config if file didn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(config, path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return config, nil
}

// LoadEnv loads a .env file from the working directory if one exists.
// Variables already set in the environment are not overridden.
func LoadEnv() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("MEDIASHELL_CONFIG"); path != "" {
		return path
	}

	// Use XDG config directory if available
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mediashell", "config.json")
	}

	// Fall back to home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(home, ".config", "mediashell", "config.json")
}
