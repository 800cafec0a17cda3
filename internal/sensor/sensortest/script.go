// internal/sensor/sensortest/script.go

// Package sensortest provides a scripted tilt source for tests.
package sensortest

import (
	"sync"

	"github.com/tamzrod/posturelink/internal/sensor"
)

// Reading is one scripted sample. A non-nil Err makes ReadTilt fail.
type Reading struct {
	Pitch, Roll float64
	Err         error
}

// Script replays readings in order and then repeats the last one.
type Script struct {
	mu    sync.Mutex
	steps []Reading
	pos   int
	reads int
}

func NewScript(steps ...Reading) *Script {
	return &Script{steps: steps}
}

func (s *Script) ReadTilt() (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if len(s.steps) == 0 {
		return 0, 0, sensor.ErrNoReading
	}
	r := s.steps[s.pos]
	if s.pos < len(s.steps)-1 {
		s.pos++
	}
	return r.Pitch, r.Roll, r.Err
}

// Push appends readings to the script.
func (s *Script) Push(steps ...Reading) {
	s.mu.Lock()
	s.steps = append(s.steps, steps...)
	s.mu.Unlock()
}

// Reads counts ReadTilt calls.
func (s *Script) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}
