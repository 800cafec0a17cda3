// internal/sender/sampler.go

// Package sender is the wearable side of the link: it samples tilt, runs
// the calibration handshake and broadcasts corrected telemetry.
package sender

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/posturelink/internal/alert"
	"github.com/tamzrod/posturelink/internal/clock"
	"github.com/tamzrod/posturelink/internal/packet"
	"github.com/tamzrod/posturelink/internal/sensor"
)

// Offset is the calibration zero. It is replaced whole, never mutated.
type Offset struct {
	Pitch float64
	Roll  float64
}

// Transmitter is the send half of a link.
type Transmitter interface {
	Send(data []byte) error
}

// Button is the local calibrate button. Pressed reports the current level.
type Button interface {
	Pressed() bool
}

// Feedback drives the haptic motor and the status indicator. It is only
// ever called from the goroutine running Step, so implementations need
// no locking.
type Feedback interface {
	Motor(on bool)
	Indicator(lit bool)
}

type noFeedback struct{}

func (noFeedback) Motor(bool)     {}
func (noFeedback) Indicator(bool) {}

type noButton struct{}

func (noButton) Pressed() bool { return false }

// Timing is every fixed wait in the sampling loop.
type Timing struct {
	GoodPeriod     time.Duration // cadence while posture is good
	BlindTime      time.Duration // motor pulse on slouch
	Settle         time.Duration // pause after the pulse
	Debounce       time.Duration // local button re-check
	CountdownSteps int
	CountdownLit   time.Duration
	CountdownDark  time.Duration
	ConfirmBlinks  int
	ConfirmPhase   time.Duration
}

// DefaultTiming matches the wearable firmware cadence.
func DefaultTiming() Timing {
	return Timing{
		GoodPeriod:     100 * time.Millisecond,
		BlindTime:      200 * time.Millisecond,
		Settle:         50 * time.Millisecond,
		Debounce:       50 * time.Millisecond,
		CountdownSteps: 3,
		CountdownLit:   200 * time.Millisecond,
		CountdownDark:  800 * time.Millisecond,
		ConfirmBlinks:  3,
		ConfirmPhase:   100 * time.Millisecond,
	}
}

// Config is the static sampler setup.
type Config struct {
	Battery int32
	Timing  Timing
}

// Sampler owns the calibration offset and the two remotely settable flags.
// Step runs on one goroutine; RequestCalibration and SetVibration are safe
// from any goroutine.
type Sampler struct {
	cfg    Config
	src    sensor.Source
	tx     Transmitter
	clk    clock.Clock
	log    *zap.Logger
	button Button
	fb     Feedback

	offset    atomic.Pointer[Offset]
	calibrate atomic.Bool
	vibration atomic.Bool
	ack       atomic.Bool

	rawPitch float64
	rawRoll  float64
	last     packet.Telemetry
}

// Option customises a Sampler.
type Option func(*Sampler)

func WithButton(b Button) Option     { return func(s *Sampler) { s.button = b } }
func WithFeedback(f Feedback) Option { return func(s *Sampler) { s.fb = f } }

func NewSampler(cfg Config, src sensor.Source, tx Transmitter, clk clock.Clock, log *zap.Logger, opts ...Option) *Sampler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Sampler{
		cfg:    cfg,
		src:    src,
		tx:     tx,
		clk:    clk,
		log:    log,
		button: noButton{},
		fb:     noFeedback{},
		last:   packet.Telemetry{Battery: cfg.Battery},
	}
	for _, o := range opts {
		o(s)
	}
	s.offset.Store(&Offset{})
	s.vibration.Store(true)
	return s
}

// Offset returns the active calibration zero.
func (s *Sampler) Offset() Offset { return *s.offset.Load() }

// RequestCalibration arms the handshake for the next Step.
func (s *Sampler) RequestCalibration() { s.calibrate.Store(true) }

// CalibrationPending reports an armed, not yet completed handshake.
func (s *Sampler) CalibrationPending() bool { return s.calibrate.Load() }

func (s *Sampler) SetVibration(on bool) { s.vibration.Store(on) }

func (s *Sampler) Vibration() bool { return s.vibration.Load() }

// Acknowledge queues an indicator blink for the next Step.
func (s *Sampler) Acknowledge() { s.ack.Store(true) }

// Run steps until ctx is done.
func (s *Sampler) Run(ctx context.Context) error {
	s.log.Info("sampler started",
		zap.Int32("battery", s.cfg.Battery),
		zap.Float64("slouch_deg", alert.SlouchDegrees),
	)
	for {
		if err := s.Step(ctx); err != nil {
			s.fb.Motor(false)
			s.fb.Indicator(false)
			s.log.Info("sampler stopped", zap.Error(err))
			return err
		}
	}
}

// Step is one loop iteration: pending ack blink, read, maybe calibrate,
// correct, feed back, send, wait. The only error is ctx cancellation.
func (s *Sampler) Step(ctx context.Context) error {
	if s.ack.Swap(false) {
		s.fb.Indicator(true)
		if err := s.clk.Sleep(ctx, AckBlink); err != nil {
			return err
		}
		s.fb.Indicator(false)
	}

	s.read()

	wanted, err := s.calibrationWanted(ctx)
	if err != nil {
		return err
	}
	if wanted {
		if err := s.runCalibration(ctx); err != nil {
			return err
		}
	}

	off := s.offset.Load()
	t := packet.Telemetry{
		Pitch:   float32(s.rawPitch - off.Pitch),
		Roll:    float32(s.rawRoll - off.Roll),
		Battery: s.cfg.Battery,
	}

	tm := s.cfg.Timing
	if math.Abs(float64(t.Pitch)) > alert.SlouchDegrees {
		if s.vibration.Load() {
			s.fb.Motor(true)
		}
		s.fb.Indicator(true)
		s.send(t)
		if err := s.clk.Sleep(ctx, tm.BlindTime); err != nil {
			return err
		}
		s.fb.Motor(false)
		s.fb.Indicator(false)
		return s.clk.Sleep(ctx, tm.Settle)
	}

	s.fb.Motor(false)
	s.fb.Indicator(false)
	s.send(t)
	return s.clk.Sleep(ctx, tm.GoodPeriod)
}

// read refreshes the raw reading; on failure the previous one stands.
func (s *Sampler) read() bool {
	p, r, err := s.src.ReadTilt()
	if err != nil {
		s.log.Debug("sensor read failed, keeping last reading", zap.Error(err))
		return false
	}
	s.rawPitch, s.rawRoll = p, r
	return true
}

func (s *Sampler) calibrationWanted(ctx context.Context) (bool, error) {
	if s.calibrate.Load() {
		return true, nil
	}
	if !s.button.Pressed() {
		return false, nil
	}
	if err := s.clk.Sleep(ctx, s.cfg.Timing.Debounce); err != nil {
		return false, err
	}
	return s.calibrate.Load() || s.button.Pressed(), nil
}

// runCalibration blocks sampling for the countdown. The last packet is
// re-sent each second so the display keeps seeing the link.
func (s *Sampler) runCalibration(ctx context.Context) error {
	tm := s.cfg.Timing
	s.log.Info("calibration started", zap.Int("countdown_steps", tm.CountdownSteps))
	s.fb.Motor(false)

	for i := tm.CountdownSteps; i > 0; i-- {
		s.resend()
		s.fb.Indicator(true)
		if err := s.clk.Sleep(ctx, tm.CountdownLit); err != nil {
			return err
		}
		s.fb.Indicator(false)
		if err := s.clk.Sleep(ctx, tm.CountdownDark); err != nil {
			return err
		}
	}

	if s.read() {
		s.offset.Store(&Offset{Pitch: s.rawPitch, Roll: s.rawRoll})
		s.log.Info("calibration captured",
			zap.Float64("pitch_offset", s.rawPitch),
			zap.Float64("roll_offset", s.rawRoll),
		)
	} else {
		old := s.offset.Load()
		s.log.Warn("calibration capture failed, keeping previous offset",
			zap.Float64("pitch_offset", old.Pitch),
			zap.Float64("roll_offset", old.Roll),
		)
	}
	s.calibrate.Store(false)

	for i := 0; i < tm.ConfirmBlinks; i++ {
		s.fb.Indicator(true)
		if err := s.clk.Sleep(ctx, tm.ConfirmPhase); err != nil {
			return err
		}
		s.fb.Indicator(false)
		if err := s.clk.Sleep(ctx, tm.ConfirmPhase); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sampler) send(t packet.Telemetry) {
	s.last = t
	if err := s.tx.Send(packet.EncodeTelemetry(t)); err != nil {
		s.log.Debug("telemetry send failed", zap.Error(err))
	}
}

func (s *Sampler) resend() {
	if err := s.tx.Send(packet.EncodeTelemetry(s.last)); err != nil {
		s.log.Debug("keep-alive send failed", zap.Error(err))
	}
}
