package playback

import "sync"

// Dispatcher queues state updates for the UI goroutine. Posting never
// blocks; Drain runs the queued closures in the order they were posted.
type Dispatcher struct {
	mu    sync.Mutex
	queue []func()
	ready chan struct{}
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{ready: make(chan struct{}, 1)}
}

// Post enqueues fn
func (d *Dispatcher) Post(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	select {
	case d.ready <- struct{}{}:
	default:
	}
}

// Ready receives a value when work has been posted since the last receive
func (d *Dispatcher) Ready() <-chan struct{} {
	return d.ready
}

// Pending returns the number of queued closures
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Drain runs everything queued so far and returns how many closures ran.
// Closures posted while draining wait for the next call.
func (d *Dispatcher) Drain() int {
	d.mu.Lock()
	queue := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}
