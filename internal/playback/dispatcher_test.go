package playback

import (
	"sync"
	"testing"
)

func TestDispatcherDrainOrder(t *testing.T) {
	d := NewDispatcher()
	var got []int
	for i := range 5 {
		d.Post(func() { got = append(got, i) })
	}

	if d.Pending() != 5 {
		t.Fatalf("pending = %d, want 5", d.Pending())
	}
	if n := d.Drain(); n != 5 {
		t.Fatalf("drained %d, want 5", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v", got)
		}
	}
	if d.Drain() != 0 {
		t.Error("second drain should be empty")
	}
}

func TestDispatcherReadyCoalesces(t *testing.T) {
	d := NewDispatcher()
	d.Post(func() {})
	d.Post(func() {})

	select {
	case <-d.Ready():
	default:
		t.Fatal("ready not signalled")
	}
	select {
	case <-d.Ready():
		t.Fatal("ready signalled twice for one batch")
	default:
	}
}

func TestDispatcherPostDuringDrain(t *testing.T) {
	d := NewDispatcher()
	ran := 0
	d.Post(func() {
		ran++
		d.Post(func() { ran++ })
	})

	if n := d.Drain(); n != 1 {
		t.Fatalf("drained %d, want 1", n)
	}
	if d.Pending() != 1 {
		t.Fatalf("pending = %d, want the closure posted while draining", d.Pending())
	}
	d.Drain()
	if ran != 2 {
		t.Errorf("ran = %d, want 2", ran)
	}
}

func TestDispatcherConcurrentPost(t *testing.T) {
	d := NewDispatcher()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				d.Post(func() {})
			}
		}()
	}
	wg.Wait()

	if n := d.Drain(); n != 800 {
		t.Errorf("drained %d, want 800", n)
	}
}
