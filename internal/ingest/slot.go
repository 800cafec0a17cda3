// internal/ingest/slot.go

// Package ingest holds single-slot handoff buffers: between the link
// listener and the display tick (telemetry), and between the display tick
// and its adapters (views). Latest value wins.
package ingest

import (
	"context"
	"sync"
)

// Slot is a one-element overwrite buffer. It is never a queue.
// The zero value is ready to use.
type Slot[T any] struct {
	mu          sync.Mutex
	value       T
	full        bool
	overwritten uint64
	ready       chan struct{} // capacity 1, signalled on Put
}

// Put replaces whatever is in the slot. It never blocks.
func (s *Slot[T]) Put(v T) {
	s.mu.Lock()
	if s.full {
		s.overwritten++
	}
	s.value = v
	s.full = true
	ready := s.readyLocked()
	s.mu.Unlock()

	select {
	case ready <- struct{}{}:
	default:
	}
}

// Take drains the slot. ok is false when nothing arrived since the last Take.
func (s *Slot[T]) Take() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full {
		return v, false
	}
	s.full = false
	v = s.value
	var zero T
	s.value = zero
	return v, true
}

// Wait blocks until a value is available or ctx is done, then drains it.
func (s *Slot[T]) Wait(ctx context.Context) (T, error) {
	for {
		if v, ok := s.Take(); ok {
			return v, nil
		}
		s.mu.Lock()
		ready := s.readyLocked()
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-ready:
		}
	}
}

// Overwritten counts values replaced before the consumer saw them.
func (s *Slot[T]) Overwritten() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overwritten
}

func (s *Slot[T]) readyLocked() chan struct{} {
	if s.ready == nil {
		s.ready = make(chan struct{}, 1)
	}
	return s.ready
}
