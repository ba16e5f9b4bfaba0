// Package visualizer draws a mirrored frequency spectrum of the bound audio
// element, one frame per display tick.
package visualizer

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/jscyril/mediashell/internal/analysis"
	"github.com/jscyril/mediashell/internal/media"
	playerrors "github.com/jscyril/mediashell/pkg/errors"
	"go.uber.org/zap"
)

// State is the lifecycle position of a Loop
type State int

const (
	Unconnected State = iota
	Connected
	Running
	TornDown
)

func (s State) String() string {
	switch s {
	case Unconnected:
		return "unconnected"
	case Connected:
		return "connected"
	case Running:
		return "running"
	case TornDown:
		return "torn down"
	default:
		return "unknown"
	}
}

// Colors are the frame colours
type Colors struct {
	Background color.RGBA
	Upper      color.RGBA
	Lower      color.RGBA
}

// DefaultColors match the classic black background with red and green bars
var DefaultColors = Colors{
	Background: color.RGBA{A: 0xff},
	Upper:      color.RGBA{R: 100, A: 0xff},
	Lower:      color.RGBA{G: 100, A: 0xff},
}

// Loop owns the analysis session of one mounted player
type Loop struct {
	logger     *zap.Logger
	newContext analysis.Factory
	sched      Scheduler
	canvas     Canvas
	colors     Colors

	mu          sync.Mutex
	state       State
	ctx         *analysis.Context
	analyser    *analysis.Analyser
	source      *media.SourceNode
	frame       []uint8
	cancelFrame func()
	draws       int
}

// NewLoop creates an unconnected loop
func NewLoop(logger *zap.Logger, factory analysis.Factory, sched Scheduler, canvas Canvas, colors Colors) *Loop {
	return &Loop{
		logger:     logger,
		newContext: factory,
		sched:      sched,
		canvas:     canvas,
		colors:     colors,
	}
}

// State returns the current lifecycle state
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Draws returns how many frames have been drawn
func (l *Loop) Draws() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.draws
}

// Attach taps el's audio. The context and analyser are created on first use
// and reused afterwards; any previous tap is disconnected before the new
// connections are made. Failures are logged and leave the loop unconnected
// while playback carries on.
func (l *Loop) Attach(el media.Tappable) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == TornDown {
		return fmt.Errorf("attach visualizer: %w", playerrors.ErrContextClosed)
	}

	if err := l.connectLocked(el); err != nil {
		l.logger.Warn("visualizer unavailable", zap.Error(err))
		return err
	}

	if l.state == Unconnected {
		l.state = Connected
	}
	l.logger.Debug("visualizer connected",
		zap.Int("bins", len(l.frame)),
		zap.Stringer("state", l.state))
	return nil
}

func (l *Loop) connectLocked(el media.Tappable) error {
	if l.ctx == nil {
		ctx, err := l.newContext()
		if err != nil {
			return fmt.Errorf("create analysis context: %w", err)
		}
		l.ctx = ctx
	}
	if l.analyser == nil {
		a, err := l.ctx.CreateAnalyser()
		if err != nil {
			return fmt.Errorf("create analyser: %w", err)
		}
		l.analyser = a
	}

	src, err := l.ctx.MediaElementSource(el)
	if err != nil {
		return fmt.Errorf("capture element audio: %w", err)
	}

	if l.source != nil && l.source != src {
		l.source.Disconnect()
	}
	if err := src.Reconnect(l.analyser, l.ctx.Destination()); err != nil {
		return fmt.Errorf("connect analyser: %w", err)
	}

	l.source = src
	l.frame = make([]uint8, l.analyser.FrequencyBinCount())
	return nil
}

// Start begins the redraw chain. It reports false when the loop is not
// connected or a chain is already running.
func (l *Loop) Start() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Connected {
		return false
	}
	l.state = Running
	l.cancelFrame = l.sched.RequestFrame(l.tick)
	return true
}

func (l *Loop) tick() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Running {
		return
	}
	l.drawLocked()
	l.cancelFrame = l.sched.RequestFrame(l.tick)
}

// drawLocked paints bars upward from the vertical centre for the first half
// of the bins and mirrors them downward
func (l *Loop) drawLocked() {
	bins := l.analyser.ByteFrequencyData(l.frame)
	w, h := l.canvas.Size()

	l.canvas.Clear(l.colors.Background)
	if bins > 0 && w > 0 && h > 0 {
		barWidth := max(1, int(float64(w)/float64(bins)*2.5))
		mid := h / 2
		x := 0
		for i := 0; i < bins/2 && x < w; i++ {
			height := int(float64(l.frame[i]) / 255 * float64(mid))
			l.canvas.FillRect(x, mid, barWidth, -height, l.colors.Upper)
			l.canvas.FillRect(x, mid, barWidth, height, l.colors.Lower)
			x += barWidth + 1
		}
	}
	l.canvas.Present()
	l.draws++
}

// Teardown cancels the pending frame, disconnects the tap and closes the
// analysis context. Close failures are logged. No frame is drawn after
// Teardown returns.
func (l *Loop) Teardown() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == TornDown {
		return
	}

	if l.cancelFrame != nil {
		l.cancelFrame()
		l.cancelFrame = nil
	}
	if l.source != nil {
		l.source.Disconnect()
	}
	if l.ctx != nil {
		if err := l.ctx.Close(); err != nil {
			l.logger.Warn("close analysis context", zap.Error(err))
		}
	}
	l.state = TornDown
	l.logger.Debug("visualizer torn down", zap.Int("draws", l.draws))
}
