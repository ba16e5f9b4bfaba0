package media

import (
	"sync"

	playerrors "github.com/jscyril/mediashell/pkg/errors"
)

// Node receives the audio routed out of a SourceNode
type Node interface {
	Process(samples [][2]float64)
}

type destination struct{}

func (destination) Process([][2]float64) {}

// Destination is the speaker node. Once an element's source has been
// captured, its audio is heard only while the source is connected here.
var Destination Node = destination{}

// SourceNode is the output graph of one audio element. Creating it reroutes
// the element's audio: samples flow to the connected nodes only.
type SourceNode struct {
	mu      sync.Mutex
	outputs []Node
}

// Connect adds n as an output. Connecting a node that is already connected
// returns ErrAlreadyConnected and leaves the single existing path in place.
func (s *SourceNode) Connect(n Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.outputs {
		if o == n {
			return playerrors.ErrAlreadyConnected
		}
	}
	s.outputs = append(s.outputs, n)
	return nil
}

// Reconnect replaces every output with nodes in one step, so audio keeps
// reaching a node present before and after. Listing a node twice returns
// ErrAlreadyConnected and leaves the outputs unchanged.
func (s *SourceNode) Reconnect(nodes ...Node) error {
	for i, n := range nodes {
		for _, prev := range nodes[:i] {
			if prev == n {
				return playerrors.ErrAlreadyConnected
			}
		}
	}

	s.mu.Lock()
	s.outputs = append([]Node(nil), nodes...)
	s.mu.Unlock()
	return nil
}

// Disconnect removes every output
func (s *SourceNode) Disconnect() {
	s.mu.Lock()
	s.outputs = nil
	s.mu.Unlock()
}

// Connections returns how many paths lead from the source to n
func (s *SourceNode) Connections(n Node) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, o := range s.outputs {
		if o == n {
			count++
		}
	}
	return count
}

// Outputs returns the number of connected nodes
func (s *SourceNode) Outputs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outputs)
}

// route hands samples to every output and reports whether the
// destination is among them
func (s *SourceNode) route(samples [][2]float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	audible := false
	for _, o := range s.outputs {
		if o == Destination {
			audible = true
			continue
		}
		o.Process(samples)
	}
	return audible
}
