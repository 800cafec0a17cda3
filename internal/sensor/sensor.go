// internal/sensor/sensor.go

// Package sensor provides raw tilt readings for the sender.
// Readings are uncorrected: calibration is applied by the sampler.
package sensor

import (
	"errors"
	"math"
)

// LSBPerG is the accelerometer scale at the ±2 g range.
const LSBPerG = 16384.0

var ErrNoReading = errors.New("sensor: no reading available")

// Source yields one raw tilt reading in degrees.
type Source interface {
	ReadTilt() (pitch, roll float64, err error)
}

// Func adapts a plain function to Source.
type Func func() (float64, float64, error)

func (f Func) ReadTilt() (float64, float64, error) { return f() }

// TiltFromAccel converts raw accelerometer counts to pitch and roll.
// Gravity only; no gyro fusion.
func TiltFromAccel(ax, ay, az int16) (pitch, roll float64) {
	x := float64(ax) / LSBPerG
	y := float64(ay) / LSBPerG
	z := float64(az) / LSBPerG

	pitch = math.Atan2(-x, math.Sqrt(y*y+z*z)) * 180 / math.Pi
	roll = math.Atan2(y, z) * 180 / math.Pi
	return pitch, roll
}
