// internal/sender/sampler_test.go
package sender

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tamzrod/posturelink/internal/alert"
	"github.com/tamzrod/posturelink/internal/clock"
	"github.com/tamzrod/posturelink/internal/link"
	"github.com/tamzrod/posturelink/internal/packet"
	"github.com/tamzrod/posturelink/internal/sensor"
	"github.com/tamzrod/posturelink/internal/sensor/sensortest"
)

type recordingTx struct {
	mu   sync.Mutex
	sent [][]byte
}

func (r *recordingTx) Send(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, append([]byte(nil), data...))
	return nil
}

func (r *recordingTx) telemetry(t *testing.T) []packet.Telemetry {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]packet.Telemetry, 0, len(r.sent))
	for _, b := range r.sent {
		tel, ok := packet.DecodeTelemetry(b)
		require.True(t, ok)
		out = append(out, tel)
	}
	return out
}

type recordingFeedback struct {
	mu        sync.Mutex
	motorOn   int
	litEvents int
	motor     bool
	lit       bool
}

func (f *recordingFeedback) Motor(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if on {
		f.motorOn++
	}
	f.motor = on
}

func (f *recordingFeedback) Indicator(lit bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lit {
		f.litEvents++
	}
	f.lit = lit
}

type scriptedButton struct {
	levels []bool
	pos    int
}

func (b *scriptedButton) Pressed() bool {
	if b.pos >= len(b.levels) {
		return false
	}
	v := b.levels[b.pos]
	b.pos++
	return v
}

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestSampler(src sensor.Source, opts ...Option) (*Sampler, *recordingTx, *clock.Fake) {
	tx := &recordingTx{}
	clk := clock.NewFake(start)
	cfg := Config{Battery: 95, Timing: DefaultTiming()}
	return NewSampler(cfg, src, tx, clk, zap.NewNop(), opts...), tx, clk
}

func TestStepGoodPosture(t *testing.T) {
	fb := &recordingFeedback{}
	s, tx, clk := newTestSampler(sensortest.NewScript(sensortest.Reading{Pitch: 5, Roll: -2}), WithFeedback(fb))

	require.NoError(t, s.Step(context.Background()))

	got := tx.telemetry(t)
	require.Len(t, got, 1)
	assert.Equal(t, packet.Telemetry{Pitch: 5, Roll: -2, Battery: 95}, got[0])
	assert.Equal(t, 100*time.Millisecond, clk.Slept())
	assert.Zero(t, fb.motorOn)
}

func TestStepSlouchPulsesMotor(t *testing.T) {
	fb := &recordingFeedback{}
	s, tx, clk := newTestSampler(sensortest.NewScript(sensortest.Reading{Pitch: 20}), WithFeedback(fb))

	require.NoError(t, s.Step(context.Background()))

	assert.Len(t, tx.telemetry(t), 1)
	assert.Equal(t, 1, fb.motorOn)
	assert.False(t, fb.motor, "motor must be off after the blind time")
	assert.Equal(t, 250*time.Millisecond, clk.Slept())
}

func TestStepSlouchVibrationDisabled(t *testing.T) {
	fb := &recordingFeedback{}
	s, _, _ := newTestSampler(sensortest.NewScript(sensortest.Reading{Pitch: -30}), WithFeedback(fb))
	s.SetVibration(false)

	require.NoError(t, s.Step(context.Background()))
	assert.Zero(t, fb.motorOn)
	assert.Equal(t, 1, fb.litEvents, "indicator still flags the slouch")
}

func TestSensorErrorKeepsLastReading(t *testing.T) {
	src := sensortest.NewScript(
		sensortest.Reading{Pitch: 7, Roll: 1},
		sensortest.Reading{Err: errors.New("i2c timeout")},
	)
	s, tx, _ := newTestSampler(src)

	require.NoError(t, s.Step(context.Background()))
	require.NoError(t, s.Step(context.Background()))

	got := tx.telemetry(t)
	require.Len(t, got, 2)
	assert.Equal(t, got[0], got[1])
}

func TestRemoteCalibrationHandshake(t *testing.T) {
	src := sensortest.NewScript(
		sensortest.Reading{Pitch: 10, Roll: 2},  // loop read
		sensortest.Reading{Pitch: 12, Roll: 3},  // capture
		sensortest.Reading{Pitch: 20, Roll: 5},  // next loop
		sensortest.Reading{Pitch: -8, Roll: -1}, // and the one after
	)
	s, tx, clk := newTestSampler(src)
	s.RequestCalibration()

	require.NoError(t, s.Step(context.Background()))

	assert.False(t, s.CalibrationPending())
	assert.Equal(t, Offset{Pitch: 12, Roll: 3}, s.Offset())

	got := tx.telemetry(t)
	require.Len(t, got, 4, "three keep-alives then one corrected sample")
	for i := 0; i < 3; i++ {
		assert.Equal(t, packet.Telemetry{Battery: 95}, got[i], "keep-alive %d", i)
	}
	assert.Equal(t, packet.Telemetry{Pitch: 0, Roll: 0, Battery: 95}, got[3])

	// countdown 3 x 1s, confirmation 3 x 200ms, then the good-posture period
	assert.Equal(t, 3700*time.Millisecond, clk.Slept())

	require.NoError(t, s.Step(context.Background()))
	require.NoError(t, s.Step(context.Background()))
	got = tx.telemetry(t)
	assert.Equal(t, float32(8), got[4].Pitch)
	assert.Equal(t, float32(2), got[4].Roll)
	assert.Equal(t, float32(-20), got[5].Pitch)
}

func TestKeepAliveRepeatsPreviousPacket(t *testing.T) {
	src := sensortest.NewScript(
		sensortest.Reading{Pitch: 4, Roll: 1},
		sensortest.Reading{Pitch: 30, Roll: 9},
		sensortest.Reading{Pitch: 30, Roll: 9},
	)
	s, tx, _ := newTestSampler(src)

	require.NoError(t, s.Step(context.Background()))
	s.RequestCalibration()
	require.NoError(t, s.Step(context.Background()))

	got := tx.telemetry(t)
	require.Len(t, got, 5)
	for i := 1; i <= 3; i++ {
		assert.Equal(t, got[0], got[i])
	}
}

func TestCaptureFailureKeepsPreviousOffset(t *testing.T) {
	src := sensortest.NewScript(
		sensortest.Reading{Pitch: 10},
		sensortest.Reading{Pitch: 6, Roll: 1}, // first capture
		sensortest.Reading{Pitch: 9},
		sensortest.Reading{Err: errors.New("nack")}, // second capture
		sensortest.Reading{Pitch: 9},
	)
	s, tx, _ := newTestSampler(src)

	s.RequestCalibration()
	require.NoError(t, s.Step(context.Background()))
	require.Equal(t, Offset{Pitch: 6, Roll: 1}, s.Offset())

	s.RequestCalibration()
	require.NoError(t, s.Step(context.Background()))

	assert.Equal(t, Offset{Pitch: 6, Roll: 1}, s.Offset())
	assert.False(t, s.CalibrationPending(), "handshake completes even when capture fails")

	got := tx.telemetry(t)
	assert.Equal(t, float32(3), got[len(got)-1].Pitch)
}

func TestLocalButtonDebounce(t *testing.T) {
	t.Run("bounce is ignored", func(t *testing.T) {
		btn := &scriptedButton{levels: []bool{true, false}}
		s, tx, clk := newTestSampler(sensortest.NewScript(sensortest.Reading{Pitch: 1}), WithButton(btn))

		require.NoError(t, s.Step(context.Background()))
		assert.Len(t, tx.telemetry(t), 1)
		assert.Equal(t, 150*time.Millisecond, clk.Slept())
		assert.Equal(t, Offset{}, s.Offset())
	})

	t.Run("held press calibrates", func(t *testing.T) {
		btn := &scriptedButton{levels: []bool{true, true}}
		src := sensortest.NewScript(sensortest.Reading{Pitch: 1}, sensortest.Reading{Pitch: 2, Roll: 2})
		s, tx, _ := newTestSampler(src, WithButton(btn))

		require.NoError(t, s.Step(context.Background()))
		assert.Len(t, tx.telemetry(t), 4)
		assert.Equal(t, Offset{Pitch: 2, Roll: 2}, s.Offset())
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	fb := &recordingFeedback{}
	s, _, _ := newTestSampler(sensortest.NewScript(sensortest.Reading{Pitch: 40}), WithFeedback(fb))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
	assert.False(t, fb.motor)
}

func TestSamplerOverBus(t *testing.T) {
	bus := link.NewBus()
	wearable, display := bus.Join(), bus.Join()

	clk := clock.NewFake(start)
	cfg := Config{Battery: 80, Timing: DefaultTiming()}
	s := NewSampler(cfg, sensortest.NewScript(sensortest.Reading{Pitch: 3, Roll: 4}), wearable, clk, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan packet.Telemetry, 4)
	go func() {
		_ = display.Listen(ctx, func(b []byte) {
			if tel, ok := packet.DecodeTelemetry(b); ok {
				got <- tel
			}
		})
	}()

	require.NoError(t, s.Step(ctx))

	select {
	case tel := <-got:
		assert.Equal(t, packet.Telemetry{Pitch: 3, Roll: 4, Battery: 80}, tel)
	case <-time.After(time.Second):
		t.Fatal("no telemetry on the bus")
	}
}

func TestSlouchAngleMatchesDisplay(t *testing.T) {
	for _, pitch := range []float64{0, 14.9, alert.SlouchDegrees, 15.1, -15.1, 40} {
		fb := &recordingFeedback{}
		s, _, _ := newTestSampler(sensortest.NewScript(sensortest.Reading{Pitch: pitch}), WithFeedback(fb))
		require.NoError(t, s.Step(context.Background()))

		displayed := alert.Evaluate(true, pitch, false) == alert.Slouch
		assert.Equal(t, displayed, fb.motorOn == 1, "pitch %.1f", pitch)
	}
}
