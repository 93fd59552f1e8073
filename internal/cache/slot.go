// Package cache provides a time-boxed single-value memo for endpoint payloads.
package cache

import (
	"sync"
	"time"
)

// Slot holds at most one value together with the time it was computed.
// A value is fresh while now - computedAt < ttl.
//
// Concurrent misses may compute in parallel; the last one to finish wins.
// The mutex guards the fields only and is never held across a compute.
type Slot[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu         sync.Mutex
	value      T
	computedAt time.Time
	filled     bool
}

// Option configures a Slot.
type Option func(*slotOptions)

type slotOptions struct {
	now func() time.Time
}

// WithClock overrides the slot's time source.
func WithClock(now func() time.Time) Option {
	return func(o *slotOptions) { o.now = now }
}

// NewSlot returns an empty slot with the given freshness window.
func NewSlot[T any](ttl time.Duration, opts ...Option) *Slot[T] {
	o := slotOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Slot[T]{ttl: ttl, now: o.now}
}

// Get returns the cached value if it is still fresh.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filled && s.now().Sub(s.computedAt) < s.ttl {
		return s.value, true
	}
	var zero T
	return zero, false
}

// Set replaces the cached value and stamps it with the current time.
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = v
	s.computedAt = s.now()
	s.filled = true
}

// Clear empties the slot.
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	s.value = zero
	s.computedAt = time.Time{}
	s.filled = false
}

// GetOrCompute returns the fresh cached value, or calls compute and caches
// its result. A compute error leaves the slot unchanged.
func (s *Slot[T]) GetOrCompute(compute func() (T, error)) (T, error) {
	v, _, err := s.Fetch(compute)
	return v, err
}

// Fetch is GetOrCompute that also reports whether the cached value was used.
func (s *Slot[T]) Fetch(compute func() (T, error)) (v T, hit bool, err error) {
	if v, ok := s.Get(); ok {
		return v, true, nil
	}

	v, err = compute()
	if err != nil {
		var zero T
		return zero, false, err
	}
	s.Set(v)
	return v, false, nil
}
