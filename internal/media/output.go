package media

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Output is the process audio device
type Output interface {
	SampleRate() beep.SampleRate
	Play(s beep.Streamer)
	Clear()
	// Lock and Unlock guard streamer state against the mixing goroutine
	Lock()
	Unlock()
}

var (
	speakerOnce sync.Once
	speakerErr  error
)

type speakerOutput struct {
	sr beep.SampleRate
}

// NewSpeakerOutput initializes the speaker once for the process
func NewSpeakerOutput(sr beep.SampleRate) (Output, error) {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sr, sr.N(time.Second/10))
	})
	if speakerErr != nil {
		return nil, fmt.Errorf("init speaker: %w", speakerErr)
	}
	return &speakerOutput{sr: sr}, nil
}

func (o *speakerOutput) SampleRate() beep.SampleRate { return o.sr }
func (o *speakerOutput) Play(s beep.Streamer)        { speaker.Play(s) }
func (o *speakerOutput) Clear()                      { speaker.Clear() }
func (o *speakerOutput) Lock()                       { speaker.Lock() }
func (o *speakerOutput) Unlock()                     { speaker.Unlock() }
