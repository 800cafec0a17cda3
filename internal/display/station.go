// internal/display/station.go

// Package display is the receiving node: it drains the ingestion slot once
// per tick, fuses liveness, tilt and hydration into one alert and hands the
// result to the display adapters. It also originates commands.
package display

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/posturelink/internal/alert"
	"github.com/tamzrod/posturelink/internal/clock"
	"github.com/tamzrod/posturelink/internal/hydration"
	"github.com/tamzrod/posturelink/internal/ingest"
	"github.com/tamzrod/posturelink/internal/liveness"
	"github.com/tamzrod/posturelink/internal/packet"
)

// ErrCooldown is returned when calibrate is pressed while still disabled.
var ErrCooldown = errors.New("display: calibrate is cooling down")

const (
	// MaxIndicatorOffset clamps the posture dot travel.
	MaxIndicatorOffset = 45
	indicatorGain      = 1.5
)

// Transmitter is the send half of a link.
type Transmitter interface {
	Send(data []byte) error
}

// Sink consumes one View per tick.
type Sink interface {
	Show(ctx context.Context, v View) error
}

// Config is the fixed scheduler geometry.
type Config struct {
	TickPeriod        time.Duration
	LinkTimeout       time.Duration
	CalibrateCooldown time.Duration
	WaterThreshold    int // ticks
	HistoryEvery      int // ticks per history point
	HistoryPoints     int
}

func DefaultConfig() Config {
	return Config{
		TickPeriod:        hydration.DefaultTickPeriod,
		LinkTimeout:       liveness.DefaultTimeout,
		CalibrateCooldown: 3 * time.Second,
		WaterThreshold:    hydration.DefaultThreshold,
		HistoryEvery:      2000,
		HistoryPoints:     60,
	}
}

// Station is the display node state. Receive runs on the link goroutine,
// Tick on the scheduler goroutine and the command methods on the UI
// goroutine; they share only the slot and the station mutex.
type Station struct {
	cfg Config
	tx  Transmitter
	clk clock.Clock
	log *zap.Logger

	slot  ingest.Slot[packet.Telemetry]
	live  *liveness.Monitor
	water *hydration.Timer

	mu            sync.Mutex
	pitch         float64
	roll          float64
	battery       int32
	offset        int
	vibration     bool
	cooldownUntil time.Time
	historyTicks  int
	history       []int
}

func NewStation(cfg Config, tx Transmitter, clk clock.Clock, log *zap.Logger) *Station {
	def := DefaultConfig()
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = def.TickPeriod
	}
	if cfg.CalibrateCooldown <= 0 {
		cfg.CalibrateCooldown = def.CalibrateCooldown
	}
	if cfg.HistoryEvery <= 0 {
		cfg.HistoryEvery = def.HistoryEvery
	}
	if cfg.HistoryPoints <= 0 {
		cfg.HistoryPoints = def.HistoryPoints
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Station{
		cfg:       cfg,
		tx:        tx,
		clk:       clk,
		log:       log,
		live:      liveness.New(cfg.LinkTimeout),
		water:     hydration.New(cfg.WaterThreshold, cfg.TickPeriod),
		vibration: true,
		history:   make([]int, 0, cfg.HistoryPoints),
	}
}

// Receive is the link handler. Only telemetry records are accepted;
// everything else is dropped without a trace.
func (s *Station) Receive(data []byte) {
	t, ok := packet.DecodeTelemetry(data)
	if !ok {
		return
	}
	s.slot.Put(t)
}

// Tick runs one scheduler period and returns what the adapters should show.
func (s *Station) Tick(now time.Time) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.historyTicks++
	if s.historyTicks >= s.cfg.HistoryEvery {
		s.historyTicks = 0
		s.pushHistory(int(math.Abs(s.pitch)))
	}

	s.water.Tick()

	if t, ok := s.slot.Take(); ok {
		s.live.Observe(now)
		s.pitch = float64(t.Pitch)
		s.roll = float64(t.Roll)
		s.battery = t.Battery
		s.offset = indicatorOffset(s.pitch)
	}

	connected := s.live.Connected(now)
	if !connected {
		s.offset = 0
	}

	due := s.water.Due()
	calEnabled := !now.Before(s.cooldownUntil)

	v := View{
		At:               now,
		Alert:            alert.Evaluate(connected, s.pitch, due),
		Connected:        connected,
		Pitch:            s.pitch,
		Roll:             s.roll,
		Battery:          s.battery,
		IndicatorOffset:  s.offset,
		Drinks:           s.water.Drinks(),
		WaterPercent:     s.water.Percent(),
		WaterRemaining:   s.water.Remaining(),
		WaterClock:       s.water.Clock(),
		HydrationDue:     due,
		CalibrateEnabled: calEnabled,
		Vibration:        s.vibration,
		Disconnected:     s.disconnectedFor(now, connected),
		Overwritten:      s.slot.Overwritten(),
		History:          append([]int(nil), s.history...),
	}
	return v
}

func (s *Station) disconnectedFor(now time.Time, connected bool) time.Duration {
	if connected {
		return 0
	}
	return s.live.Since(now)
}

func (s *Station) pushHistory(v int) {
	if len(s.history) == s.cfg.HistoryPoints {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, v)
}

func indicatorOffset(pitch float64) int {
	y := pitch * indicatorGain
	if y > MaxIndicatorOffset {
		y = MaxIndicatorOffset
	}
	if y < -MaxIndicatorOffset {
		y = -MaxIndicatorOffset
	}
	return int(y)
}

// Calibrate broadcasts one calibrate command and disables the control for
// the cooldown. A press during the cooldown sends nothing.
func (s *Station) Calibrate(now time.Time) error {
	s.mu.Lock()
	if now.Before(s.cooldownUntil) {
		s.mu.Unlock()
		return ErrCooldown
	}
	s.cooldownUntil = now.Add(s.cfg.CalibrateCooldown)
	s.mu.Unlock()

	s.log.Info("calibrate command sent", zap.Duration("cooldown", s.cfg.CalibrateCooldown))
	if err := s.tx.Send(packet.EncodeCommand(packet.Calibrate())); err != nil {
		return fmt.Errorf("display: send calibrate: %w", err)
	}
	return nil
}

// SetVibration broadcasts the vibration setting once.
func (s *Station) SetVibration(on bool) error {
	s.mu.Lock()
	s.vibration = on
	s.mu.Unlock()

	s.log.Info("vibration command sent", zap.Bool("enabled", on))
	if err := s.tx.Send(packet.EncodeCommand(packet.SetVibration(on))); err != nil {
		return fmt.Errorf("display: send vibration: %w", err)
	}
	return nil
}

// Drink records a confirmed drink.
func (s *Station) Drink() {
	s.water.Drink()
	s.log.Info("drink recorded", zap.Int("drinks", s.water.Drinks()))
}

// ResetWater zeroes the drink count.
func (s *Station) ResetWater() {
	s.water.Reset()
	s.log.Info("drink count reset")
}

// Run ticks every TickPeriod until ctx is done. Views reach sink on their
// own goroutine through a latest-wins slot: a slow adapter skips views and
// never stretches the tick the hydration timer counts.
func (s *Station) Run(ctx context.Context, sink Sink) error {
	s.log.Info("display loop started",
		zap.Duration("tick", s.cfg.TickPeriod),
		zap.Duration("link_timeout", s.live.Timeout()),
	)

	var (
		views ingest.Slot[View]
		wg    sync.WaitGroup
	)
	if sink != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.deliver(ctx, sink, &views)
		}()
	}
	defer wg.Wait()

	last := alert.Priority(255)
	for {
		v := s.Tick(s.clk.Now())
		if v.Alert != last {
			s.log.Info("alert changed", zap.String("alert", v.Alert.String()), zap.Float64("pitch", v.Pitch))
			last = v.Alert
		}
		if sink != nil {
			views.Put(v)
		}
		if err := s.clk.Sleep(ctx, s.cfg.TickPeriod); err != nil {
			s.log.Info("display loop stopped", zap.Error(err))
			return err
		}
	}
}

// deliver feeds the newest view to sink until ctx is done. A failing sink
// is reported once, then again when it recovers.
func (s *Station) deliver(ctx context.Context, sink Sink, views *ingest.Slot[View]) {
	failing := false
	for {
		v, err := views.Wait(ctx)
		if err != nil || ctx.Err() != nil {
			return
		}
		if err := sink.Show(ctx, v); err != nil {
			if !failing {
				s.log.Warn("display sink failed", zap.Error(err))
				failing = true
			} else {
				s.log.Debug("display sink still failing", zap.Error(err))
			}
			continue
		}
		if failing {
			s.log.Info("display sink recovered")
			failing = false
		}
	}
}
