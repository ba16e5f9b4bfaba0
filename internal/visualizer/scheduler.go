package visualizer

import "time"

// Scheduler runs fn once on the next display frame. The returned function
// cancels the request if it has not fired yet.
type Scheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// TickerScheduler fires frames at a fixed rate
type TickerScheduler struct {
	Interval time.Duration
}

// NewTickerScheduler returns a scheduler firing fps times a second
func NewTickerScheduler(fps int) TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return TickerScheduler{Interval: time.Second / time.Duration(fps)}
}

func (s TickerScheduler) RequestFrame(fn func()) func() {
	t := time.AfterFunc(s.Interval, fn)
	return func() { t.Stop() }
}
