// Package random provides the injectable uniform streams every simulation draws from.
package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source yields uniform values in [0, 1).
type Source interface {
	Uniform() float64
}

// RandSource wraps math/rand. It is safe for concurrent use.
type RandSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a seeded source. A zero seed means time-seeded.
func New(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{rng: rand.New(rand.NewSource(seed))}
}

func (r *RandSource) Uniform() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Split derives n independent child sources from parent. Each child owns a
// private stream, so parallel workers never share state. Children are
// seeded in order, which keeps a seeded parent reproducible.
func Split(parent Source, n int) []Source {
	children := make([]Source, n)
	for i := range children {
		seed := int64(parent.Uniform()*(1<<62)) + 1
		children[i] = &RandSource{rng: rand.New(rand.NewSource(seed))}
	}
	return children
}

// Sequence replays a fixed list of values, wrapping around at the end.
// Intended for tests that need exact draws.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	pos    int
}

// NewSequence creates a Sequence. An empty list always yields 0.5.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Uniform() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0.5
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

// Draws reports how many values have been consumed.
func (s *Sequence) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}
