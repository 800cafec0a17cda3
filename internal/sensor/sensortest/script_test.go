// internal/sensor/sensortest/script_test.go
package sensortest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/posturelink/internal/sensor"
)

var _ sensor.Source = (*Script)(nil)

func TestScriptRepeatsLast(t *testing.T) {
	boom := errors.New("i2c nack")
	s := NewScript(
		Reading{Pitch: 1, Roll: 2},
		Reading{Err: boom},
		Reading{Pitch: 3, Roll: 4},
	)

	p, r, err := s.ReadTilt()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, []float64{p, r})

	_, _, err = s.ReadTilt()
	assert.ErrorIs(t, err, boom)

	for i := 0; i < 3; i++ {
		p, r, err = s.ReadTilt()
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 4}, []float64{p, r})
	}
	assert.Equal(t, 5, s.Reads())
}

func TestEmptyScript(t *testing.T) {
	_, _, err := NewScript().ReadTilt()
	assert.ErrorIs(t, err, sensor.ErrNoReading)
}
