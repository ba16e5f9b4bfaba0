package media

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/jscyril/mediashell/api"
	playerrors "github.com/jscyril/mediashell/pkg/errors"
	"github.com/jscyril/mediashell/pkg/events"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DialTimeout bounds how long mpv gets to open its IPC socket
const DialTimeout = 5 * time.Second

// observedProperties are watched with observe_property; the index plus one
// is the observer id
var observedProperties = []string{
	"pause",
	"time-pos",
	"duration",
	"volume",
	"mute",
	"fullscreen",
	"eof-reached",
}

var _ Element = (*VideoElement)(nil)

// VideoElement renders a resource with mpv driven over its JSON IPC socket.
// Video opens a window; audio the audio element cannot decode plays
// without one. State is updated optimistically by setters and then
// corrected by mpv's property-change events.
type VideoElement struct {
	res    *api.MediaResource
	logger *zap.Logger
	bus    *events.Bus

	ipc     *ipcClient
	cmd     *exec.Cmd
	group   *errgroup.Group
	cancel  context.CancelFunc
	cleanup []func()

	mu         sync.Mutex
	paused     bool
	ended      bool
	position   time.Duration
	duration   time.Duration
	durationOK bool
	volume     float64
	muted      bool
	fullscreen bool
	closed     bool
}

// MPVArgs returns the mpv command line for a media path and IPC socket
func MPVArgs(socket, path string, kind api.MediaKind) []string {
	args := []string{
		"--idle=no",
		"--pause",
		"--keep-open=yes",
		"--no-terminal",
	}
	if kind == api.KindVideo {
		args = append(args, "--force-window=yes")
	} else {
		args = append(args, "--no-video", "--force-window=no")
	}
	return append(args, "--input-ipc-server="+socket, "--", path)
}

// NewVideoElement starts mpv paused on res and connects to it
func NewVideoElement(ctx context.Context, res *api.MediaResource, mpvPath string, logger *zap.Logger) (*VideoElement, error) {
	path, removeMedia, err := Materialize(res.Locator, res.Name)
	if err != nil {
		return nil, playerrors.NewPlayerError("open", res.Name, err)
	}

	dir, err := os.MkdirTemp("", "mediashell-mpv-")
	if err != nil {
		removeMedia()
		return nil, fmt.Errorf("create socket dir: %w", err)
	}
	socket := filepath.Join(dir, "mpv.sock")

	e := newVideoElement(res, logger)
	e.cleanup = append(e.cleanup, removeMedia, func() { os.RemoveAll(dir) })

	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.cmd = exec.CommandContext(runCtx, mpvPath, MPVArgs(socket, path, res.Kind)...)
	if err := e.cmd.Start(); err != nil {
		cancel()
		e.runCleanup()
		return nil, playerrors.NewPlayerError("start mpv", res.Name, err)
	}

	dialCtx, dialCancel := context.WithTimeout(ctx, DialTimeout)
	defer dialCancel()
	client, err := dialIPC(dialCtx, socket)
	if err != nil {
		cancel()
		e.cmd.Wait()
		e.runCleanup()
		return nil, playerrors.NewPlayerError("start mpv", res.Name, err)
	}

	e.attach(runCtx, client)
	e.group.Go(func() error {
		if err := e.cmd.Wait(); err != nil && runCtx.Err() == nil {
			return fmt.Errorf("mpv exited: %w", err)
		}
		// mpv gone: unblock the reader
		client.Close()
		return nil
	})

	logger.Info("video element started",
		zap.String("name", res.Name),
		zap.String("socket", socket))
	return e, nil
}

func newVideoElement(res *api.MediaResource, logger *zap.Logger) *VideoElement {
	return &VideoElement{
		res:    res,
		logger: logger,
		bus:    events.NewBus(),
		paused: true,
		volume: 1,
	}
}

// attach starts the IPC goroutines and registers property observers
func (e *VideoElement) attach(ctx context.Context, client *ipcClient) {
	e.ipc = client
	e.group, _ = errgroup.WithContext(ctx)
	e.group.Go(client.readLoop)
	e.group.Go(func() error {
		e.watch(client.Events())
		return nil
	})

	for i, name := range observedProperties {
		if err := client.Send("observe_property", i+1, name); err != nil {
			e.logger.Warn("observe mpv property",
				zap.String("property", name),
				zap.Error(err))
		}
	}
}

// watch translates mpv property changes into element notifications
func (e *VideoElement) watch(msgs <-chan ipcMessage) {
	for msg := range msgs {
		if msg.Event != "property-change" {
			continue
		}
		if ev, ok := e.apply(msg.Name, msg.Data); ok {
			e.bus.Publish(ev)
		}
	}
}

// apply folds one property value into the element state and returns the
// notification it produces
func (e *VideoElement) apply(name string, data json.RawMessage) (api.MediaEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var t api.EventType
	switch name {
	case "pause":
		var paused bool
		if json.Unmarshal(data, &paused) != nil || paused == e.paused {
			return api.MediaEvent{}, false
		}
		e.paused = paused
		t = api.EventPlay
		if paused {
			t = api.EventPause
		}

	case "time-pos":
		var secs float64
		if isNull(data) || json.Unmarshal(data, &secs) != nil {
			return api.MediaEvent{}, false
		}
		e.position = seconds(secs)
		t = api.EventTimeUpdate

	case "duration":
		var secs float64
		if isNull(data) || json.Unmarshal(data, &secs) != nil || math.IsNaN(secs) {
			e.duration, e.durationOK = 0, false
		} else {
			e.duration, e.durationOK = seconds(secs), true
		}
		t = api.EventTimeUpdate

	case "volume":
		var pct float64
		if json.Unmarshal(data, &pct) != nil {
			return api.MediaEvent{}, false
		}
		e.volume = clamp01(pct / 100)
		t = api.EventVolumeChange

	case "mute":
		if json.Unmarshal(data, &e.muted) != nil {
			return api.MediaEvent{}, false
		}
		t = api.EventVolumeChange

	case "fullscreen":
		if json.Unmarshal(data, &e.fullscreen) != nil {
			return api.MediaEvent{}, false
		}
		t = api.EventFullscreenChange

	case "eof-reached":
		var eof bool
		if json.Unmarshal(data, &eof) != nil || !eof || e.ended {
			return api.MediaEvent{}, false
		}
		e.ended = true
		e.paused = true
		t = api.EventEnded

	default:
		return api.MediaEvent{}, false
	}

	return e.snapshotLocked(t), true
}

func (e *VideoElement) snapshotLocked(t api.EventType) api.MediaEvent {
	return api.MediaEvent{
		Type:        t,
		CurrentTime: e.position,
		Duration:    e.duration,
		DurationOK:  e.durationOK,
		Volume:      e.volume,
		Muted:       e.muted,
		Fullscreen:  e.fullscreen,
	}
}

// isNull reports a property mpv has no value for yet
func isNull(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Kind returns KindVideo
func (e *VideoElement) Kind() api.MediaKind { return e.res.Kind }

// Events returns the notification bus
func (e *VideoElement) Events() *events.Bus { return e.bus }

// Play unpauses mpv. The channel reports mpv's answer.
func (e *VideoElement) Play() <-chan error {
	result := make(chan error, 1)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		result <- playerrors.ErrElementClosed
		return result
	}
	restart := e.ended
	e.paused = false
	e.ended = false
	e.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), DialTimeout)
		defer cancel()

		if restart {
			if _, err := e.ipc.Command(ctx, "seek", 0, "absolute"); err != nil {
				e.logger.Warn("rewind failed", zap.Error(err))
			}
		}
		if _, err := e.ipc.Command(ctx, "set_property", "pause", false); err != nil {
			e.mu.Lock()
			e.paused = true
			e.mu.Unlock()

			perr := playerrors.NewPlayerError("play", e.res.Name, fmt.Errorf("%w: %v", playerrors.ErrPlaybackFailed, err))
			e.bus.Publish(api.MediaEvent{Type: api.EventError, Err: perr})
			result <- perr
			return
		}
		result <- nil
	}()
	return result
}

// Pause pauses mpv
func (e *VideoElement) Pause() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return playerrors.ErrElementClosed
	}
	e.paused = true
	e.mu.Unlock()

	return e.ipc.Send("set_property", "pause", true)
}

// Paused reports whether playback is paused
func (e *VideoElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// CurrentTime returns the last reported playback position
func (e *VideoElement) CurrentTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// SetCurrentTime seeks to d, clamped to [0, duration] once the duration is known
func (e *VideoElement) SetCurrentTime(d time.Duration) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return playerrors.ErrElementClosed
	}
	d = max(d, 0)
	if e.durationOK {
		d = min(d, e.duration)
	}
	e.position = d
	if d < e.duration {
		e.ended = false
	}
	e.mu.Unlock()

	return e.ipc.Send("seek", d.Seconds(), "absolute")
}

// Duration returns the duration reported by mpv
func (e *VideoElement) Duration() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration, e.durationOK
}

// Volume returns the linear volume level
func (e *VideoElement) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// SetVolume sets the volume level, clamped to [0, 1]; mpv takes percent
func (e *VideoElement) SetVolume(v float64) error {
	v = clamp01(v)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return playerrors.ErrElementClosed
	}
	e.volume = v
	e.mu.Unlock()

	return e.ipc.Send("set_property", "volume", v*100)
}

// Muted reports whether audio is muted
func (e *VideoElement) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// SetMuted mutes or unmutes audio
func (e *VideoElement) SetMuted(muted bool) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return playerrors.ErrElementClosed
	}
	e.muted = muted
	e.mu.Unlock()

	return e.ipc.Send("set_property", "mute", muted)
}

// Fullscreen reports whether the mpv window is fullscreen
func (e *VideoElement) Fullscreen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fullscreen
}

// SetFullscreen requests window fullscreen; the fullscreenchange
// notification follows once mpv applied it
func (e *VideoElement) SetFullscreen(on bool) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return playerrors.ErrElementClosed
	}
	e.fullscreen = on
	e.mu.Unlock()

	return e.ipc.Send("set_property", "fullscreen", on)
}

// Close quits mpv and waits for the IPC goroutines
func (e *VideoElement) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	if e.ipc != nil {
		e.ipc.Send("quit")
	}
	if e.cancel != nil {
		e.cancel()
	}
	if e.ipc != nil {
		e.ipc.Close()
	}

	var err error
	if e.group != nil {
		err = e.group.Wait()
	}
	e.runCleanup()
	e.bus.Close()

	if err != nil {
		e.logger.Warn("video element closed with error", zap.Error(err))
	}
	return err
}

func (e *VideoElement) runCleanup() {
	for _, fn := range e.cleanup {
		fn()
	}
	e.cleanup = nil
}
