// Package analysis provides the audio analysis capability behind the
// visualizer: a context that owns analysers and hands out the source and
// destination nodes of an element's output graph.
package analysis

import (
	"fmt"
	"sync"

	"github.com/jscyril/mediashell/internal/media"
	playerrors "github.com/jscyril/mediashell/pkg/errors"
)

// Context is a long-lived analysis handle. It can be closed once.
type Context struct {
	sampleRate int
	fftSize    int

	mu     sync.Mutex
	closed bool
}

// Factory creates analysis contexts; the visualizer takes one so tests can
// make initialization fail
type Factory func() (*Context, error)

// NewContext creates a context whose analysers default to fftSize
func NewContext(sampleRate, fftSize int) (*Context, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", playerrors.ErrAnalysisUnavailable, sampleRate)
	}
	if fftSize == 0 {
		fftSize = DefaultFFTSize
	}
	if !ValidFFTSize(fftSize) {
		return nil, fmt.Errorf("%w: %d", playerrors.ErrInvalidFFTSize, fftSize)
	}
	return &Context{sampleRate: sampleRate, fftSize: fftSize}, nil
}

// NewFactory returns a Factory bound to the given settings
func NewFactory(sampleRate, fftSize int) Factory {
	return func() (*Context, error) {
		return NewContext(sampleRate, fftSize)
	}
}

// SampleRate returns the rate the analysed audio runs at
func (c *Context) SampleRate() int {
	return c.sampleRate
}

// CreateAnalyser returns a new analyser owned by the context
func (c *Context) CreateAnalyser() (*Analyser, error) {
	if c.Closed() {
		return nil, playerrors.ErrContextClosed
	}
	return NewAnalyser(c.fftSize)
}

// MediaElementSource captures el's audio and returns its source node
func (c *Context) MediaElementSource(el media.Tappable) (*media.SourceNode, error) {
	if c.Closed() {
		return nil, playerrors.ErrContextClosed
	}
	if el == nil {
		return nil, fmt.Errorf("%w: no element", playerrors.ErrAnalysisUnavailable)
	}
	return el.Source(), nil
}

// Destination returns the speaker node
func (c *Context) Destination() media.Node {
	return media.Destination
}

// Closed reports whether Close succeeded before
func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close releases the context. Closing it again returns ErrContextClosed.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return playerrors.ErrContextClosed
	}
	c.closed = true
	return nil
}
