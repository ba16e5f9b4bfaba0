package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrCancelled             = errors.New("selection cancelled")
	ErrUnsupportedFormat     = errors.New("unsupported media format")
	ErrInvalidLocator        = errors.New("invalid media locator")
	ErrNotReady              = errors.New("media resource not ready")
	ErrPlaybackFailed        = errors.New("playback failed")
	ErrElementClosed         = errors.New("media element closed")
	ErrAlreadyConnected      = errors.New("node already connected")
	ErrAnalysisUnavailable   = errors.New("audio analysis unavailable")
	ErrContextClosed         = errors.New("analysis context closed")
	ErrInvalidFFTSize        = errors.New("fft size must be a power of two between 32 and 32768")
	ErrFullscreenUnsupported = errors.New("fullscreen not supported")
	ErrInvalidVolume         = errors.New("volume must be between 0.0 and 1.0")
)

// PlayerError wraps errors with additional context
type PlayerError struct {
	Op       string // Operation that failed
	Resource string // Resource name if applicable
	Err      error  // Underlying error
}

func (e *PlayerError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Resource, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// NewPlayerError creates a new PlayerError
func NewPlayerError(op, resource string, err error) *PlayerError {
	return &PlayerError{Op: op, Resource: resource, Err: err}
}

// IPCError is returned when the video backend rejects a command
type IPCError struct {
	Command string
	Reason  string
}

func (e *IPCError) Error() string {
	return fmt.Sprintf("mpv %s: %s", e.Command, e.Reason)
}
