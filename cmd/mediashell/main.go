package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/faiface/beep"
	"github.com/jscyril/mediashell/api"
	"github.com/jscyril/mediashell/internal/analysis"
	"github.com/jscyril/mediashell/internal/config"
	"github.com/jscyril/mediashell/internal/logging"
	"github.com/jscyril/mediashell/internal/media"
	"github.com/jscyril/mediashell/internal/playback"
	"github.com/jscyril/mediashell/internal/source"
	"github.com/jscyril/mediashell/internal/ui"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// startup carries command line input into the graph
type startup struct {
	Path string
}

// AppOptions is the dependency graph without the configuration
var AppOptions = fx.Options(
	fx.Provide(
		newLogger,
		newOutput,
		newBridge,
		newOpener,
		newController,
		newElementFactory,
		newAnalysisFactory,
		source.NewSelector,
		playback.NewDispatcher,
	),
	fx.Invoke(registerHooks),
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	configPath := config.GetConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var st startup
	if len(os.Args) > 1 {
		st.Path = os.Args[1]
	}

	app := fx.New(
		fx.Supply(cfg, st),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		AppOptions,
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startCtx, cancelStart := context.WithTimeout(ctx, app.StartTimeout())
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	code := 0
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		code = sig.ExitCode
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop: %w", err)
	}

	if code != 0 {
		return fmt.Errorf("player failed, see %s", cfg.LogFile)
	}
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.LogFile, cfg.LogLevel)
}

// newOutput opens the sound device. Without one, video still plays and
// audio resources report the failure when mounted.
func newOutput(cfg *config.Config, logger *zap.Logger) media.Output {
	out, err := media.NewSpeakerOutput(beep.SampleRate(cfg.SampleRate))
	if err != nil {
		logger.Warn("audio output unavailable", zap.Error(err))
		return nil
	}
	return out
}

func newBridge(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) playback.HostBridge {
	if cfg.HostBridge == config.BridgeDBus {
		b, err := playback.NewDBusBridge()
		if err == nil {
			lc.Append(fx.StopHook(b.Close))
			return b
		}
		logger.Warn("session bus unavailable, using terminal bridge", zap.Error(err))
	}
	return playback.TerminalBridge{W: os.Stdout}
}

// newOpener returns the desktop dialog when configured; nil selects the
// built-in browser
func newOpener(cfg *config.Config, logger *zap.Logger) source.FileOpener {
	if cfg.Dialog != config.DialogZenity {
		return nil
	}
	z, err := source.NewZenityOpener()
	if err != nil {
		logger.Warn("desktop dialog unavailable, using file browser", zap.Error(err))
		return nil
	}
	return z
}

func newController(logger *zap.Logger, disp *playback.Dispatcher, cfg *config.Config, bridge playback.HostBridge) *playback.Controller {
	return playback.NewController(logger.Named("playback"), disp, playback.Options{
		Strategy: cfg.FullscreenStrategy,
		Bridge:   bridge,
		Keys:     playback.NewKeyMap(cfg.KeyBindings),
	})
}

func newElementFactory(out media.Output, cfg *config.Config, logger *zap.Logger) ui.ElementFactory {
	opts := media.Options{
		Output:  out,
		MPVPath: cfg.MPVPath,
		Logger:  logger.Named("media"),
	}
	return func(ctx context.Context, res *api.MediaResource) (media.Element, error) {
		return media.NewElement(ctx, res, opts)
	}
}

func newAnalysisFactory(cfg *config.Config) analysis.Factory {
	return analysis.NewFactory(cfg.SampleRate, cfg.FFTSize)
}

type uiParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	Logger     *zap.Logger
	Selector   *source.Selector
	Controller *playback.Controller
	Elements   ui.ElementFactory
	Analysis   analysis.Factory
	Opener     source.FileOpener
	Startup    startup
}

// registerHooks runs the terminal UI for the lifetime of the app and shuts
// the app down when the UI quits
func registerHooks(p uiParams) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	model := ui.NewModel(ui.Options{
		Context:     runCtx,
		Config:      p.Config,
		Logger:      p.Logger.Named("ui"),
		Selector:    p.Selector,
		Controller:  p.Controller,
		Elements:    p.Elements,
		Analysis:    p.Analysis,
		Opener:      p.Opener,
		InitialPath: p.Startup.Path,
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				code := 0
				if err := ui.Run(runCtx, model); err != nil {
					p.Logger.Error("ui stopped", zap.Error(err))
					code = 1
				}
				p.Controller.Close()
				if err := p.Shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					p.Logger.Warn("shutdown", zap.Error(err))
				}
			}()
			p.Logger.Info("mediashell started", zap.String("path", p.Startup.Path))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			p.Logger.Info("shutting down")
			_ = p.Logger.Sync()
			return nil
		},
	})
}
