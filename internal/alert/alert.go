// internal/alert/alert.go

// Package alert reduces link liveness, tilt and hydration into the single
// display state.
package alert

import "math"

// SlouchDegrees is the |pitch| above which posture counts as a slouch.
const SlouchDegrees = 15.0

// Priority is ordered: a larger value wins.
type Priority uint8

const (
	Searching Priority = iota
	Good
	Slouch
	Hydrate
)

func (p Priority) String() string {
	switch p {
	case Searching:
		return "SEARCHING..."
	case Good:
		return "POSTURE GOOD"
	case Slouch:
		return "SLOUCH DETECTED"
	case Hydrate:
		return "DRINK WATER!"
	default:
		return "UNKNOWN"
	}
}

// Evaluate has no memory: the same inputs always give the same state.
// A lost link forces Searching regardless of the other inputs.
func Evaluate(connected bool, pitch float64, hydrationDue bool) Priority {
	switch {
	case !connected:
		return Searching
	case hydrationDue:
		return Hydrate
	case math.Abs(pitch) > SlouchDegrees:
		return Slouch
	default:
		return Good
	}
}
