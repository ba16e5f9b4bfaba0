package api

import "time"

// MediaKind tells the shell which element renders a resource
type MediaKind int

const (
	KindAudio MediaKind = iota
	KindVideo
)

func (k MediaKind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "audio"
}

// MediaResource is an immutable reference to a playable file.
// Selecting a new file replaces the resource; it is never mutated.
type MediaResource struct {
	Locator string    `json:"locator"`
	Kind    MediaKind `json:"kind"`
	Name    string    `json:"name"`
}

// PlaybackState is the derived UI state of one bound media element
type PlaybackState struct {
	IsPlaying        bool    `json:"is_playing"`
	ProgressFraction float64 `json:"progress_fraction"` // 0..100
	Volume           float64 `json:"volume"`            // 0..1
	IsMuted          bool    `json:"is_muted"`
	IsFullScreen     bool    `json:"is_full_screen"`
}

// DefaultPlaybackState returns the state of a freshly bound element
func DefaultPlaybackState() PlaybackState {
	return PlaybackState{Volume: 1}
}

// FullscreenStrategy selects who handles fullscreen requests
type FullscreenStrategy string

const (
	FullscreenElement    FullscreenStrategy = "element"
	FullscreenHostWindow FullscreenStrategy = "hostWindow"
)

// EventType identifies a native media element notification
type EventType int

const (
	EventTimeUpdate EventType = iota
	EventVolumeChange
	EventPlay
	EventPause
	EventEnded
	EventFullscreenChange
	EventError
)

// AllEventTypes lists every notification an element can publish
var AllEventTypes = []EventType{
	EventTimeUpdate,
	EventVolumeChange,
	EventPlay,
	EventPause,
	EventEnded,
	EventFullscreenChange,
	EventError,
}

func (t EventType) String() string {
	switch t {
	case EventTimeUpdate:
		return "timeupdate"
	case EventVolumeChange:
		return "volumechange"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventEnded:
		return "ended"
	case EventFullscreenChange:
		return "fullscreenchange"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// MediaEvent is a snapshot of the element taken when the notification fired.
// Handlers read the snapshot rather than the element so the most recently
// received notification wins.
type MediaEvent struct {
	Type        EventType
	CurrentTime time.Duration
	Duration    time.Duration
	DurationOK  bool
	Volume      float64
	Muted       bool
	Fullscreen  bool
	Err         error
}
