package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jscyril/mediashell/api"
	playerrors "github.com/jscyril/mediashell/pkg/errors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.FFTSize != 256 {
		t.Errorf("FFTSize = %d, want 256", cfg.FFTSize)
	}
	if cfg.IdleTimeout() != 3*time.Second {
		t.Errorf("IdleTimeout = %v, want 3s", cfg.IdleTimeout())
	}
	if cfg.FullscreenStrategy != api.FullscreenElement {
		t.Errorf("FullscreenStrategy = %q", cfg.FullscreenStrategy)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"volume too high", func(c *Config) { c.DefaultVolume = 1.5 }, playerrors.ErrInvalidVolume},
		{"fft not power of two", func(c *Config) { c.FFTSize = 300 }, playerrors.ErrInvalidFFTSize},
		{"fft too small", func(c *Config) { c.FFTSize = 16 }, playerrors.ErrInvalidFFTSize},
		{"unknown strategy", func(c *Config) { c.FullscreenStrategy = "window" }, nil},
		{"unknown bridge", func(c *Config) { c.HostBridge = "x11" }, nil},
		{"zero frame rate", func(c *Config) { c.FrameRate = 0 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if cfg.FrameRate != 60 {
		t.Errorf("FrameRate = %d, want 60", cfg.FrameRate)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config not written: %v", err)
	}
}

func TestLoadConfigKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := []byte(`{"fullscreen_strategy": "hostWindow", "fft_size": 512}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.FullscreenStrategy != api.FullscreenHostWindow {
		t.Errorf("FullscreenStrategy = %q", cfg.FullscreenStrategy)
	}
	if cfg.FFTSize != 512 {
		t.Errorf("FFTSize = %d, want 512", cfg.FFTSize)
	}
	if cfg.IdleTimeoutMS != 3000 {
		t.Errorf("IdleTimeoutMS = %d, want default 3000", cfg.IdleTimeoutMS)
	}
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"fft_size": 100}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, playerrors.ErrInvalidFFTSize) {
		t.Errorf("error = %v, want ErrInvalidFFTSize", err)
	}
}

func TestGetConfigPathPrefersEnv(t *testing.T) {
	t.Setenv("MEDIASHELL_CONFIG", "/tmp/custom.json")
	if got := GetConfigPath(); got != "/tmp/custom.json" {
		t.Errorf("GetConfigPath = %q", got)
	}

	t.Setenv("MEDIASHELL_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := GetConfigPath(); got != filepath.Join("/xdg", "mediashell", "config.json") {
		t.Errorf("GetConfigPath = %q", got)
	}
}
