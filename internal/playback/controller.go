// Package playback owns the playback state of one bound media element and
// exposes the transport operations the control surface and keyboard drive.
package playback

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jscyril/mediashell/api"
	"github.com/jscyril/mediashell/internal/media"
	"github.com/jscyril/mediashell/pkg/events"
	"go.uber.org/zap"
)

// Options configures a Controller
type Options struct {
	Strategy api.FullscreenStrategy
	Bridge   HostBridge
	Keys     KeyMap
}

// Controller wraps a single media element. Every operation is a no-op while
// nothing is bound. State updates caused by element notifications are
// queued on the Dispatcher and applied by Flush.
type Controller struct {
	logger   *zap.Logger
	disp     *Dispatcher
	strategy api.FullscreenStrategy
	bridge   HostBridge
	keys     KeyMap

	mu    sync.Mutex
	el    media.Element
	gen   uint64
	state api.PlaybackState

	sub  *events.Subscription
	done chan struct{}
}

// NewController creates an unbound controller
func NewController(logger *zap.Logger, disp *Dispatcher, opts Options) *Controller {
	if opts.Strategy == "" {
		opts.Strategy = api.FullscreenElement
	}
	return &Controller{
		logger:   logger,
		disp:     disp,
		strategy: opts.Strategy,
		bridge:   opts.Bridge,
		keys:     opts.Keys,
		state:    api.DefaultPlaybackState(),
	}
}

// Bind attaches el, replacing any previous element. State is reset from the
// element and its notifications are subscribed to. Binding nil unbinds.
func (c *Controller) Bind(el media.Element) {
	c.Unbind()
	if el == nil {
		return
	}

	sub := el.Events().Subscribe(
		api.EventTimeUpdate,
		api.EventVolumeChange,
		api.EventPlay,
		api.EventPause,
		api.EventEnded,
		api.EventFullscreenChange,
		api.EventError,
	)
	done := make(chan struct{})

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.el = el
	c.sub = sub
	c.done = done
	c.state = api.PlaybackState{
		IsPlaying:    !el.Paused(),
		Volume:       el.Volume(),
		IsMuted:      el.Muted(),
		IsFullScreen: c.strategy == api.FullscreenElement && el.Fullscreen(),
	}
	c.mu.Unlock()

	go c.listen(gen, sub, done)
	c.logger.Debug("element bound", zap.Stringer("kind", el.Kind()), zap.Uint64("generation", gen))
}

// Unbind detaches the element. When it returns no notification handler for
// the old element will run.
func (c *Controller) Unbind() {
	c.mu.Lock()
	sub, done := c.sub, c.done
	c.el = nil
	c.sub = nil
	c.done = nil
	c.gen++
	c.state = api.DefaultPlaybackState()
	c.mu.Unlock()

	if sub != nil {
		sub.Close()
		<-done
	}
}

// Close unbinds the controller
func (c *Controller) Close() {
	c.Unbind()
}

// Bound reports whether an element is attached
func (c *Controller) Bound() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.el != nil
}

// State returns a copy of the current playback state
func (c *Controller) State() api.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Flush applies queued notification updates
func (c *Controller) Flush() int {
	return c.disp.Drain()
}

// Ready receives when updates are waiting for Flush
func (c *Controller) Ready() <-chan struct{} {
	return c.disp.Ready()
}

func (c *Controller) listen(gen uint64, sub *events.Subscription, done chan struct{}) {
	defer close(done)
	for ev := range sub.C() {
		c.disp.Post(func() { c.apply(gen, ev) })
	}
}

// apply folds a notification into the state. The newest notification wins.
func (c *Controller) apply(gen uint64, ev api.MediaEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}

	switch ev.Type {
	case api.EventTimeUpdate:
		c.state.ProgressFraction = progress(ev.CurrentTime, ev.Duration, ev.DurationOK)
	case api.EventVolumeChange:
		c.state.Volume = ev.Volume
		c.state.IsMuted = ev.Muted
	case api.EventPlay:
		c.state.IsPlaying = true
	case api.EventPause:
		c.state.IsPlaying = false
	case api.EventEnded:
		c.state.IsPlaying = false
		c.state.ProgressFraction = progress(ev.CurrentTime, ev.Duration, ev.DurationOK)
	case api.EventFullscreenChange:
		if c.strategy == api.FullscreenElement {
			c.state.IsFullScreen = ev.Fullscreen
		}
	case api.EventError:
		c.logger.Warn("media element error", zap.Error(ev.Err))
	}
}

// progress returns the position as a percentage; an unknown or zero
// duration counts as 0
func progress(cur, dur time.Duration, ok bool) float64 {
	if !ok || dur <= 0 {
		return 0
	}
	p := float64(cur) / float64(dur) * 100
	if math.IsNaN(p) {
		return 0
	}
	return max(0, min(100, p))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(1, v))
}

// bound returns the element and its generation
func (c *Controller) bound() (media.Element, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.el, c.gen
}

// TogglePlayPause plays a paused element and pauses a playing one. A
// rejected play rolls IsPlaying back to false.
func (c *Controller) TogglePlayPause() {
	el, gen := c.bound()
	if el == nil {
		return
	}

	if !el.Paused() {
		c.setPlaying(gen, false)
		if err := el.Pause(); err != nil {
			c.logger.Warn("pause failed", zap.Error(err))
		}
		return
	}

	c.setPlaying(gen, true)
	result := el.Play()
	go func() {
		if err := <-result; err != nil {
			c.logger.Warn("play rejected", zap.Error(err))
			c.disp.Post(func() { c.setPlaying(gen, false) })
		}
	}()
}

func (c *Controller) setPlaying(gen uint64, playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.gen {
		c.state.IsPlaying = playing
	}
}

// FractionAt converts a click offset within a track of the given width to
// a seek fraction
func FractionAt(offsetX, trackWidth int) float64 {
	if trackWidth <= 0 {
		return 0
	}
	return clamp01(float64(offsetX) / float64(trackWidth))
}

// SeekToFraction moves playback to f of the duration. Nothing happens while
// the duration is unknown.
func (c *Controller) SeekToFraction(f float64) {
	el, gen := c.bound()
	if el == nil {
		return
	}

	dur, ok := el.Duration()
	if !ok || dur <= 0 {
		return
	}

	f = clamp01(f)
	if err := el.SetCurrentTime(time.Duration(f * float64(dur))); err != nil {
		c.logger.Warn("seek failed", zap.Float64("fraction", f), zap.Error(err))
		return
	}

	c.mu.Lock()
	if gen == c.gen {
		c.state.ProgressFraction = f * 100
	}
	c.mu.Unlock()
}

// SeekBy moves playback by d. Progress is updated before the element
// reports the new position.
func (c *Controller) SeekBy(d time.Duration) {
	el, gen := c.bound()
	if el == nil {
		return
	}

	target := max(el.CurrentTime()+d, 0)
	if err := el.SetCurrentTime(target); err != nil {
		c.logger.Warn("seek failed", zap.Duration("target", target), zap.Error(err))
		return
	}

	dur, ok := el.Duration()
	c.mu.Lock()
	if gen == c.gen {
		c.state.ProgressFraction = progress(min(target, dur), dur, ok)
	}
	c.mu.Unlock()
}

// SetVolume sets the element volume clamped to [0, 1]. A positive volume
// also unmutes.
func (c *Controller) SetVolume(v float64) {
	el, gen := c.bound()
	if el == nil {
		return
	}

	v = clamp01(v)
	if err := el.SetVolume(v); err != nil {
		c.logger.Warn("set volume failed", zap.Float64("volume", v), zap.Error(err))
		c.resyncVolume(el, gen)
		return
	}
	if v > 0 && el.Muted() {
		if err := el.SetMuted(false); err != nil {
			c.logger.Warn("unmute failed", zap.Error(err))
			c.resyncVolume(el, gen)
			return
		}
	}

	c.mu.Lock()
	if gen == c.gen {
		c.state.Volume = v
		if v > 0 {
			c.state.IsMuted = false
		}
	}
	c.mu.Unlock()
}

// AdjustVolume changes the volume by delta
func (c *Controller) AdjustVolume(delta float64) {
	c.SetVolume(c.State().Volume + delta)
}

func (c *Controller) resyncVolume(el media.Element, gen uint64) {
	vol, muted := el.Volume(), el.Muted()
	c.mu.Lock()
	if gen == c.gen {
		c.state.Volume = vol
		c.state.IsMuted = muted
	}
	c.mu.Unlock()
}

// ToggleMute flips the element's muted flag
func (c *Controller) ToggleMute() {
	el, gen := c.bound()
	if el == nil {
		return
	}

	muted := !el.Muted()
	if err := el.SetMuted(muted); err != nil {
		c.logger.Warn("toggle mute failed", zap.Error(err))
		c.resyncVolume(el, gen)
		return
	}

	c.mu.Lock()
	if gen == c.gen {
		c.state.IsMuted = muted
	}
	c.mu.Unlock()
}

// ToggleFullScreen enters or leaves fullscreen using the configured
// strategy: the element's own fullscreen or the host window's
func (c *Controller) ToggleFullScreen() {
	el, gen := c.bound()
	if el == nil {
		return
	}

	want := !c.fullscreen(el)
	switch c.strategy {
	case api.FullscreenHostWindow:
		if c.bridge == nil {
			c.logger.Warn("no host bridge for fullscreen")
			return
		}
		if err := c.bridge.RequestFullscreenToggle(); err != nil {
			c.logger.Warn("host fullscreen request failed", zap.Error(err))
			return
		}
	default:
		if err := el.SetFullscreen(want); err != nil {
			c.logger.Warn("element fullscreen failed", zap.Error(err))
			return
		}
	}

	c.mu.Lock()
	if gen == c.gen {
		c.state.IsFullScreen = want
	}
	c.mu.Unlock()
}

// ExitFullScreen leaves fullscreen if currently in it
func (c *Controller) ExitFullScreen() {
	el, _ := c.bound()
	if el == nil || !c.fullscreen(el) {
		return
	}
	c.ToggleFullScreen()
}

// fullscreen reads the element's own flag; a host window only reports
// through the requests made here
func (c *Controller) fullscreen(el media.Element) bool {
	if c.strategy == api.FullscreenElement {
		return el.Fullscreen()
	}
	return c.State().IsFullScreen
}

// HandleKey runs the shortcut bound to msg. It reports whether the key was
// consumed; nothing is consumed while unbound.
func (c *Controller) HandleKey(msg tea.KeyMsg) bool {
	if !c.Bound() {
		return false
	}

	switch {
	case key.Matches(msg, c.keys.PlayPause):
		c.TogglePlayPause()
	case key.Matches(msg, c.keys.Mute):
		c.ToggleMute()
	case key.Matches(msg, c.keys.Fullscreen):
		c.ToggleFullScreen()
	case key.Matches(msg, c.keys.ExitFullscreen):
		el, _ := c.bound()
		if el == nil || !c.fullscreen(el) {
			return false
		}
		c.ExitFullScreen()
	case key.Matches(msg, c.keys.VolumeUp):
		c.AdjustVolume(VolumeStep)
	case key.Matches(msg, c.keys.VolumeDown):
		c.AdjustVolume(-VolumeStep)
	case key.Matches(msg, c.keys.SeekForward):
		c.SeekBy(SeekStep)
	case key.Matches(msg, c.keys.SeekBack):
		c.SeekBy(-SeekStep)
	default:
		return false
	}
	return true
}

// Keys returns the shortcut bindings
func (c *Controller) Keys() KeyMap {
	return c.keys
}
