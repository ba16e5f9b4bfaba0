package media

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/jscyril/mediashell/api"
	playerrors "github.com/jscyril/mediashell/pkg/errors"
	"github.com/jscyril/mediashell/pkg/events"
	"go.uber.org/zap"
)

// TimeUpdateInterval is how often a playing element publishes timeupdate
const TimeUpdateInterval = 250 * time.Millisecond

// Ensure AudioElement implements Element and Tappable at compile time
var (
	_ Element  = (*AudioElement)(nil)
	_ Tappable = (*AudioElement)(nil)
)

// AudioElement plays a decoded audio resource through an Output:
//
//	[Decode] -> [Resample] -> [Ctrl] -> [Volume] -> [Source graph] -> [Output]
//
// Lock order: the output lock may be held while taking mu, never the reverse.
type AudioElement struct {
	res    *api.MediaResource
	out    Output
	logger *zap.Logger
	bus    *events.Bus

	// set once by load
	streamer   beep.StreamSeekCloser
	format     beep.Format
	duration   time.Duration
	durationOK bool
	loadErr    error

	// guarded by the output lock
	ctrl *beep.Ctrl
	gain *effects.Volume

	source atomic.Pointer[SourceNode]

	mu         sync.Mutex
	paused     bool
	ended      bool
	volume     float64
	muted      bool
	fullscreen bool
	closed     bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewAudioElement decodes res and parks it paused on out. A resource that
// cannot be decoded still yields an element; its Play is rejected.
func NewAudioElement(res *api.MediaResource, out Output, logger *zap.Logger) *AudioElement {
	ctx, cancel := context.WithCancel(context.Background())
	e := &AudioElement{
		res:    res,
		out:    out,
		logger: logger,
		bus:    events.NewBus(),
		paused: true,
		volume: 1,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if err := e.load(); err != nil {
		e.loadErr = err
		logger.Warn("audio resource not decodable",
			zap.String("name", res.Name),
			zap.Error(err))
	} else {
		out.Play(e.build(true))
	}

	go e.run(ctx)
	return e
}

func (e *AudioElement) load() error {
	r, err := Open(e.res.Locator)
	if err != nil {
		return playerrors.NewPlayerError("open", e.res.Name, err)
	}

	streamer, format, err := DecodeAudio(r, e.res.Name)
	if err != nil {
		r.Close()
		return playerrors.NewPlayerError("decode", e.res.Name, err)
	}

	e.streamer = streamer
	e.format = format
	if n := streamer.Len(); n > 0 {
		e.duration = format.SampleRate.D(n)
		e.durationOK = true
	}
	return nil
}

// build assembles a fresh pipeline over the decoded stream
func (e *AudioElement) build(paused bool) beep.Streamer {
	var s beep.Streamer = e.streamer
	if e.format.SampleRate != e.out.SampleRate() {
		s = beep.Resample(4, e.format.SampleRate, e.out.SampleRate(), s)
	}

	e.mu.Lock()
	vol, muted := e.volume, e.muted
	e.mu.Unlock()

	ctrl := &beep.Ctrl{Streamer: s, Paused: paused}
	gain := &effects.Volume{
		Streamer: ctrl,
		Base:     2,
		Volume:   gainExponent(vol),
		Silent:   muted || vol == 0,
	}

	e.out.Lock()
	e.ctrl = ctrl
	e.gain = gain
	e.out.Unlock()

	return beep.Seq(&routeStreamer{s: gain, el: e}, beep.Callback(e.onEnded))
}

// gainExponent maps a linear 0..1 level onto effects.Volume's base-2 exponent
func gainExponent(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Log2(v)
}

// run publishes timeupdate while playing
func (e *AudioElement) run(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(TimeUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.mu.Lock()
			active := !e.paused && !e.ended && !e.closed
			e.mu.Unlock()
			if active {
				e.bus.Publish(e.event(api.EventTimeUpdate))
			}
		}
	}
}

// onEnded runs on the mixing goroutine with the output lock held
func (e *AudioElement) onEnded() {
	e.mu.Lock()
	e.ended = true
	e.paused = true
	ev := api.MediaEvent{
		Type:        api.EventEnded,
		CurrentTime: e.duration,
		Duration:    e.duration,
		DurationOK:  e.durationOK,
		Volume:      e.volume,
		Muted:       e.muted,
		Fullscreen:  e.fullscreen,
	}
	e.mu.Unlock()

	e.bus.Publish(ev)
}

// event snapshots the element for a notification
func (e *AudioElement) event(t api.EventType) api.MediaEvent {
	pos := e.CurrentTime()

	e.mu.Lock()
	defer e.mu.Unlock()
	return api.MediaEvent{
		Type:        t,
		CurrentTime: pos,
		Duration:    e.duration,
		DurationOK:  e.durationOK,
		Volume:      e.volume,
		Muted:       e.muted,
		Fullscreen:  e.fullscreen,
	}
}

// Kind returns KindAudio
func (e *AudioElement) Kind() api.MediaKind { return api.KindAudio }

// Events returns the notification bus
func (e *AudioElement) Events() *events.Bus { return e.bus }

// Source captures the element's audio into an output graph
func (e *AudioElement) Source() *SourceNode {
	if s := e.source.Load(); s != nil {
		return s
	}
	e.source.CompareAndSwap(nil, &SourceNode{})
	return e.source.Load()
}

// Play resumes playback, restarting from the top after the end was reached
func (e *AudioElement) Play() <-chan error {
	result := make(chan error, 1)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		result <- playerrors.ErrElementClosed
		return result
	}
	if e.loadErr != nil {
		e.paused = true
		e.mu.Unlock()
		err := playerrors.NewPlayerError("play", e.res.Name,
			fmt.Errorf("%w: %v", playerrors.ErrNotReady, e.loadErr))
		e.bus.Publish(api.MediaEvent{Type: api.EventError, Err: err})
		result <- err
		return result
	}
	wasPaused := e.paused
	restart := e.ended
	e.paused = false
	e.ended = false
	e.mu.Unlock()

	if restart {
		e.out.Lock()
		if e.streamer.Position() >= e.streamer.Len()-1 {
			if err := e.streamer.Seek(0); err != nil {
				e.logger.Warn("rewind failed", zap.Error(err))
			}
		}
		e.out.Unlock()
		e.out.Play(e.build(false))
	} else {
		e.out.Lock()
		e.ctrl.Paused = false
		e.out.Unlock()
	}

	if wasPaused {
		e.bus.Publish(e.event(api.EventPlay))
	}
	result <- nil
	return result
}

// Pause pauses playback
func (e *AudioElement) Pause() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return playerrors.ErrElementClosed
	}
	if e.paused {
		e.mu.Unlock()
		return nil
	}
	e.paused = true
	e.mu.Unlock()

	e.out.Lock()
	if e.ctrl != nil {
		e.ctrl.Paused = true
	}
	e.out.Unlock()

	e.bus.Publish(e.event(api.EventPause))
	return nil
}

// Paused reports whether playback is paused
func (e *AudioElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// CurrentTime returns the playback position
func (e *AudioElement) CurrentTime() time.Duration {
	if e.streamer == nil {
		return 0
	}
	e.out.Lock()
	pos := e.streamer.Position()
	e.out.Unlock()
	return e.format.SampleRate.D(pos)
}

// SetCurrentTime seeks to d, clamped to [0, duration]
func (e *AudioElement) SetCurrentTime(d time.Duration) error {
	if e.loadErr != nil {
		return playerrors.ErrNotReady
	}
	if e.Closed() {
		return playerrors.ErrElementClosed
	}

	d = max(0, min(d, e.duration))
	n := e.format.SampleRate.N(d)
	if l := e.streamer.Len(); n >= l {
		n = l - 1
	}
	n = max(n, 0)

	e.out.Lock()
	err := e.streamer.Seek(n)
	e.out.Unlock()
	if err != nil {
		return playerrors.NewPlayerError("seek", e.res.Name, err)
	}

	e.bus.Publish(e.event(api.EventTimeUpdate))
	return nil
}

// Duration returns the decoded length
func (e *AudioElement) Duration() (time.Duration, bool) {
	return e.duration, e.durationOK
}

// Volume returns the linear volume level
func (e *AudioElement) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// SetVolume sets the linear volume level, clamped to [0, 1]
func (e *AudioElement) SetVolume(v float64) error {
	v = clamp01(v)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return playerrors.ErrElementClosed
	}
	e.volume = v
	muted := e.muted
	e.mu.Unlock()

	e.applyGain(v, muted)
	e.bus.Publish(e.event(api.EventVolumeChange))
	return nil
}

// Muted reports whether output is muted
func (e *AudioElement) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// SetMuted mutes or unmutes output
func (e *AudioElement) SetMuted(muted bool) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return playerrors.ErrElementClosed
	}
	e.muted = muted
	v := e.volume
	e.mu.Unlock()

	e.applyGain(v, muted)
	e.bus.Publish(e.event(api.EventVolumeChange))
	return nil
}

func (e *AudioElement) applyGain(v float64, muted bool) {
	e.out.Lock()
	if e.gain != nil {
		e.gain.Volume = gainExponent(v)
		e.gain.Silent = muted || v == 0
	}
	e.out.Unlock()
}

// Fullscreen reports whether the element is presented fullscreen
func (e *AudioElement) Fullscreen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fullscreen
}

// SetFullscreen switches the element's presentation. For audio the
// presentation is the visualizer canvas.
func (e *AudioElement) SetFullscreen(on bool) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return playerrors.ErrElementClosed
	}
	changed := e.fullscreen != on
	e.fullscreen = on
	e.mu.Unlock()

	if changed {
		e.bus.Publish(e.event(api.EventFullscreenChange))
	}
	return nil
}

// Closed reports whether Close has been called
func (e *AudioElement) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Close stops output and releases the decoder
func (e *AudioElement) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	<-e.done

	var err error
	if e.streamer != nil {
		e.out.Clear()
		err = e.streamer.Close()
	}
	e.bus.Close()
	return err
}

// routeStreamer sends audio through the element's source graph once it has
// been captured
type routeStreamer struct {
	s  beep.Streamer
	el *AudioElement
}

func (r *routeStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := r.s.Stream(samples)
	if src := r.el.source.Load(); src != nil && !src.route(samples[:n]) {
		clear(samples[:n])
	}
	return n, ok
}

func (r *routeStreamer) Err() error {
	return r.s.Err()
}
