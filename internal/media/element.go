// Package media provides the native media elements the playback controller
// drives: an in-process audio element built on beep and a video element
// backed by an mpv window.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/jscyril/mediashell/api"
	"github.com/jscyril/mediashell/pkg/events"
	"go.uber.org/zap"
)

// Element is a single bound audio or video element
type Element interface {
	Kind() api.MediaKind

	// Play starts playback. The paused flag flips before Play returns; the
	// channel yields nil once playback started or the rejection reason.
	Play() <-chan error
	Pause() error
	Paused() bool

	CurrentTime() time.Duration
	// SetCurrentTime seeks, clamping to the playable range
	SetCurrentTime(d time.Duration) error
	// Duration reports false while the duration is not known yet
	Duration() (time.Duration, bool)

	Volume() float64
	SetVolume(v float64) error
	Muted() bool
	SetMuted(muted bool) error

	Fullscreen() bool
	SetFullscreen(on bool) error

	// Events carries timeupdate, volumechange and the other notifications
	Events() *events.Bus
	Close() error
}

// Tappable is implemented by elements whose audio can be routed into an
// analysis graph
type Tappable interface {
	// Source returns the element's output graph. The first call captures
	// the element's audio; later calls return the same node.
	Source() *SourceNode
}

// Options configures element construction
type Options struct {
	Output  Output
	MPVPath string
	Logger  *zap.Logger
}

// NewElement creates the element that renders res. Audio in a format the
// audio element cannot decode goes to mpv.
func NewElement(ctx context.Context, res *api.MediaResource, opts Options) (Element, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch {
	case res.Kind == api.KindVideo, !CanDecode(res.Name):
		el, err := NewVideoElement(ctx, res, opts.MPVPath, logger)
		if err != nil {
			return nil, fmt.Errorf("create %s element: %w", res.Kind, err)
		}
		return el, nil
	default:
		if opts.Output == nil {
			return nil, fmt.Errorf("create audio element: no audio output")
		}
		return NewAudioElement(res, opts.Output, logger), nil
	}
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
