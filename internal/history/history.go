// Package history provides fixed-capacity per-entity time series used for
// baseline computation and trend display.
package history

import (
	"sync"
	"time"
)

// Point is one sample in a series.
type Point struct {
	Time  time.Time
	Value float64
}

// Store holds one bounded series per entity id. Insertion past capacity
// drops the oldest sample. Entities are never removed except by SoftReset;
// the set of series slots is unbounded by design.
type Store struct {
	mu       sync.Mutex
	capacity int
	series   map[string][]Point
}

// NewStore creates a store with the given per-series capacity.
// Capacity must be positive; anything else panics, since a zero-capacity
// history is a configuration bug, not a runtime condition.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		panic("history: capacity must be positive")
	}
	return &Store{
		capacity: capacity,
		series:   make(map[string][]Point),
	}
}

// Record appends a sample to the entity's series, evicting the oldest
// sample when the series is at capacity.
func (s *Store) Record(id string, t time.Time, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := append(s.series[id], Point{Time: t, Value: value})
	if len(points) > s.capacity {
		points = points[len(points)-s.capacity:]
	}
	s.series[id] = points
}

// Series returns a copy of the entity's series, oldest first. Unknown
// entities yield an empty slice.
func (s *Store) Series(id string) []Point {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := s.series[id]
	out := make([]Point, len(points))
	copy(out, points)
	return out
}

// Values returns just the sample values of the entity's series, oldest
// first.
func (s *Store) Values(id string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := s.series[id]
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// Len returns the current length of the entity's series.
func (s *Store) Len(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.series[id])
}

// Reset drops all series.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = make(map[string][]Point)
}
