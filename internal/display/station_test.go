// internal/display/station_test.go
package display

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tamzrod/posturelink/internal/alert"
	"github.com/tamzrod/posturelink/internal/clock"
	"github.com/tamzrod/posturelink/internal/link"
	"github.com/tamzrod/posturelink/internal/packet"
	"github.com/tamzrod/posturelink/internal/sender"
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

func (r *recordingTx) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

var t0 = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func newStation(cfg Config) (*Station, *recordingTx) {
	tx := &recordingTx{}
	return NewStation(cfg, tx, clock.NewFake(t0), zap.NewNop()), tx
}

func telemetry(pitch float32) []byte {
	return packet.EncodeTelemetry(packet.Telemetry{Pitch: pitch, Roll: 1, Battery: 95})
}

func TestSearchingBeforeFirstPacket(t *testing.T) {
	s, _ := newStation(DefaultConfig())
	v := s.Tick(t0)
	assert.Equal(t, alert.Searching, v.Alert)
	assert.False(t, v.Connected)
	assert.Equal(t, "SEARCHING...", v.Header())
}

func TestSlouchThenTimeoutThenRecovery(t *testing.T) {
	s, _ := newStation(DefaultConfig())

	s.Receive(telemetry(20))
	v := s.Tick(t0)
	assert.Equal(t, alert.Slouch, v.Alert)
	assert.Equal(t, 30, v.IndicatorOffset)

	v = s.Tick(t0.Add(3000 * time.Millisecond))
	assert.Equal(t, alert.Slouch, v.Alert, "exactly at the timeout is still connected")

	v = s.Tick(t0.Add(3001 * time.Millisecond))
	assert.Equal(t, alert.Searching, v.Alert)
	assert.Zero(t, v.IndicatorOffset)
	assert.Equal(t, 3001*time.Millisecond, v.Disconnected)

	s.Receive(telemetry(5))
	v = s.Tick(t0.Add(3031 * time.Millisecond))
	assert.Equal(t, alert.Good, v.Alert)
	assert.True(t, v.Connected)
	assert.Zero(t, v.Disconnected)
}

func TestHydrateOverridesPosture(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WaterThreshold = 5
	s, _ := newStation(cfg)

	now := t0
	var v View
	for i := 0; i < 5; i++ {
		s.Receive(telemetry(5))
		v = s.Tick(now)
		now = now.Add(cfg.TickPeriod)
	}
	assert.Equal(t, alert.Hydrate, v.Alert)
	assert.True(t, v.HydrationDue)
	assert.Equal(t, "00:00", v.WaterClock)

	s.Drink()
	s.Receive(telemetry(25))
	v = s.Tick(now)
	assert.Equal(t, alert.Slouch, v.Alert)
	assert.Equal(t, 1, v.Drinks)
	assert.Equal(t, 12, v.WaterPercent)

	s.ResetWater()
	v = s.Tick(now.Add(cfg.TickPeriod))
	assert.Zero(t, v.Drinks)
}

func TestLatestSampleWinsBetweenTicks(t *testing.T) {
	s, _ := newStation(DefaultConfig())
	s.Receive(telemetry(30))
	s.Receive(telemetry(-2))
	v := s.Tick(t0)
	assert.Equal(t, alert.Good, v.Alert)
	assert.Equal(t, float64(-2), v.Pitch)
	assert.Equal(t, uint64(1), v.Overwritten)
}

func TestReceiveDropsNonTelemetry(t *testing.T) {
	s, _ := newStation(DefaultConfig())
	s.Receive(packet.EncodeCommand(packet.Calibrate()))
	s.Receive([]byte{1, 2, 3})
	s.Receive(nil)

	v := s.Tick(t0)
	assert.Equal(t, alert.Searching, v.Alert)
}

func TestIndicatorOffsetClamp(t *testing.T) {
	assert.Equal(t, 45, indicatorOffset(40))
	assert.Equal(t, -45, indicatorOffset(-90))
	assert.Equal(t, -15, indicatorOffset(-10))
	assert.Equal(t, 0, indicatorOffset(0))
}

func TestCalibrateCooldown(t *testing.T) {
	s, tx := newStation(DefaultConfig())

	require.NoError(t, s.Calibrate(t0))
	assert.Equal(t, 1, tx.count())
	assert.Equal(t, []byte{1, 0}, tx.sent[0])

	assert.ErrorIs(t, s.Calibrate(t0.Add(time.Second)), ErrCooldown)
	assert.Equal(t, 1, tx.count(), "refused press must not send")

	v := s.Tick(t0.Add(2999 * time.Millisecond))
	assert.False(t, v.CalibrateEnabled)
	assert.Equal(t, "HOLD STILL...", v.CalibrateLabel())

	v = s.Tick(t0.Add(3 * time.Second))
	assert.True(t, v.CalibrateEnabled)
	assert.Equal(t, "CALIBRATE", v.CalibrateLabel())

	require.NoError(t, s.Calibrate(t0.Add(3*time.Second)))
	assert.Equal(t, 2, tx.count())
}

func TestSetVibrationSendsOnce(t *testing.T) {
	s, tx := newStation(DefaultConfig())
	require.NoError(t, s.SetVibration(false))
	require.Equal(t, 1, tx.count())
	assert.Equal(t, []byte{2, 0}, tx.sent[0])
	assert.False(t, s.Tick(t0).Vibration)
}

func TestHistoryRing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryEvery = 2
	cfg.HistoryPoints = 3
	s, _ := newStation(cfg)

	var v View
	for i := 1; i <= 10; i++ {
		s.Receive(telemetry(float32(-i)))
		v = s.Tick(t0)
	}
	// points are taken from the pitch held before each sampling tick
	assert.Equal(t, []int{5, 7, 9}, v.History)
}

type collectSink struct {
	mu    sync.Mutex
	views []View
	stop  int
	done  context.CancelFunc
}

func (c *collectSink) Show(_ context.Context, v View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views = append(c.views, v)
	if len(c.views) == c.stop {
		c.done()
	}
	return nil
}

func TestRunTicksThroughClock(t *testing.T) {
	clk := clock.NewFake(t0)
	s := NewStation(DefaultConfig(), &recordingTx{}, clk, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	sink := &collectSink{stop: 4, done: cancel}

	err := s.Run(ctx, sink)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, sink.views, 4, "no view is delivered after cancel")
	for i := 1; i < len(sink.views); i++ {
		step := sink.views[i].At.Sub(sink.views[i-1].At)
		assert.Positive(t, step, "views arrive newest last")
		assert.Zero(t, step%DefaultConfig().TickPeriod, "views are taken on tick boundaries")
	}
}

// blockingSink holds the first Show until released.
type blockingSink struct {
	release chan struct{}
	mu      sync.Mutex
	shown   int
}

func (b *blockingSink) Show(ctx context.Context, _ View) error {
	b.mu.Lock()
	b.shown++
	b.mu.Unlock()
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func (b *blockingSink) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shown
}

func TestStalledSinkDoesNotDelayHydration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WaterThreshold = 500
	clk := clock.NewFake(t0)
	s := NewStation(cfg, &recordingTx{}, clk, zap.NewNop())

	sink := &blockingSink{release: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, sink) }()

	require.Eventually(t, s.water.Due, time.Second, time.Millisecond,
		"ticks must keep counting while the sink is stuck")
	assert.Equal(t, 1, sink.count(), "stuck sink sees only its first view")
	assert.GreaterOrEqual(t, clk.Slept(), 499*cfg.TickPeriod)

	close(sink.release)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

type failingSink struct {
	mu    sync.Mutex
	calls int
	done  context.CancelFunc
}

func (f *failingSink) Show(context.Context, View) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls == 20 {
		f.done()
	}
	return errors.New("endpoint unreachable")
}

func TestSinkFailureLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx, cancel := context.WithCancel(context.Background())
	sink := &failingSink{done: cancel}

	s := NewStation(DefaultConfig(), &recordingTx{}, clock.NewFake(t0), zap.New(core))
	assert.ErrorIs(t, s.Run(ctx, sink), context.Canceled)

	assert.Equal(t, 1, logs.FilterMessage("display sink failed").Len())
	assert.Equal(t, 19, logs.FilterMessage("display sink still failing").Len())
}

func TestCommandsReachSenderOverBus(t *testing.T) {
	bus := link.NewBus()
	wearable, base := bus.Join(), bus.Join()

	clk := clock.NewFake(t0)
	smp := sender.NewSampler(sender.Config{Battery: 95, Timing: sender.DefaultTiming()},
		sensortest.NewScript(sensortest.Reading{}), wearable, clk, zap.NewNop())
	disp := sender.NewDispatcher(smp, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = wearable.Listen(ctx, disp.Handle) }()

	st := NewStation(DefaultConfig(), base, clk, zap.NewNop())
	require.NoError(t, st.SetVibration(false))
	require.NoError(t, st.Calibrate(t0))

	require.Eventually(t, func() bool {
		return smp.CalibrationPending() && !smp.Vibration()
	}, time.Second, 5*time.Millisecond)
}
