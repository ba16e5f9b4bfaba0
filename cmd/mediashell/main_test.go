package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jscyril/mediashell/api"
	"github.com/jscyril/mediashell/internal/config"
	"github.com/jscyril/mediashell/internal/playback"
	playerrors "github.com/jscyril/mediashell/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

// TestAppGraphValidity verifies that every dependency is provided
func TestAppGraphValidity(t *testing.T) {
	err := fx.ValidateApp(
		fx.Supply(config.GetDefaultConfig(), startup{}),
		AppOptions,
	)
	if err != nil {
		t.Errorf("dependency graph is not valid: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.LogFile = t.TempDir() + "/mediashell.log"

	logger, err := newLogger(cfg)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("test logger initialization")
}

func TestNewBridgeDefaultsToTerminal(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	b := newBridge(lc, config.GetDefaultConfig(), zap.NewNop())
	if _, ok := b.(playback.TerminalBridge); !ok {
		t.Errorf("bridge = %T, want TerminalBridge", b)
	}

	var buf bytes.Buffer
	if err := (playback.TerminalBridge{W: &buf}).RequestFullscreenToggle(); err != nil || buf.Len() == 0 {
		t.Errorf("terminal bridge wrote nothing: %v", err)
	}
}

func TestNewOpener(t *testing.T) {
	cfg := config.GetDefaultConfig()
	if o := newOpener(cfg, zap.NewNop()); o != nil {
		t.Errorf("browser dialog should use the built-in browser, got %T", o)
	}
}

func TestElementFactoryWithoutOutput(t *testing.T) {
	f := newElementFactory(nil, config.GetDefaultConfig(), zap.NewNop())
	_, err := f(context.Background(), &api.MediaResource{Locator: "song.mp3", Kind: api.KindAudio, Name: "song.mp3"})
	if err == nil {
		t.Fatal("audio without an output device should fail")
	}
}

func TestAnalysisFactory(t *testing.T) {
	cfg := config.GetDefaultConfig()
	ctx, err := newAnalysisFactory(cfg)()
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if ctx.SampleRate() != cfg.SampleRate {
		t.Errorf("sample rate = %d", ctx.SampleRate())
	}

	cfg.SampleRate = 0
	if _, err := newAnalysisFactory(cfg)(); err == nil || !errors.Is(err, playerrors.ErrAnalysisUnavailable) {
		t.Error("zero sample rate should be rejected")
	}
}
