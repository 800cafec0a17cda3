// internal/config/validate.go
package config

import (
	"fmt"
	"net"

	"github.com/tamzrod/posturelink/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values are accepted; Normalize fills them afterwards.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	for i := 0; i < len(cfg.Device.Name); i++ {
		if cfg.Device.Name[i] > 0x7F {
			return fmt.Errorf("device.name must contain ASCII characters only")
		}
	}

	// ------------------------------------------------------------
	// LINK
	// ------------------------------------------------------------

	l := cfg.Link
	if l.Group != "" {
		ip := net.ParseIP(l.Group).To4()
		if ip == nil || !ip.IsMulticast() {
			return fmt.Errorf("link.group %q must be an IPv4 multicast address", l.Group)
		}
	}
	if l.BasePort < 0 || l.Channel < 0 {
		return fmt.Errorf("link.base_port and link.channel must be >= 0")
	}
	if l.Port() > 65535 {
		return fmt.Errorf("link: base_port+channel = %d exceeds 65535", l.Port())
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: want debug, info, warn or error", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format %q: want json or console", cfg.Log.Format)
	}

	// ------------------------------------------------------------
	// SENDER
	// ------------------------------------------------------------

	s := cfg.Sender
	if s.Battery < 0 || s.Battery > 100 {
		return fmt.Errorf("sender.battery %d out of range 0-100", s.Battery)
	}
	switch s.Source.Kind {
	case "", SourceFixed:
	case SourceModbus:
		if s.Source.Endpoint == "" {
			return fmt.Errorf("sender.source: kind modbus requires endpoint")
		}
	default:
		return fmt.Errorf("sender.source.kind %q: want %s or %s", s.Source.Kind, SourceModbus, SourceFixed)
	}
	if s.Source.TimeoutMs < 0 {
		return fmt.Errorf("sender.source.timeout_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// DISPLAY TIMING
	// ------------------------------------------------------------

	d := cfg.Display
	for name, v := range map[string]int{
		"tick_ms":               d.TickMs,
		"link_timeout_ms":       d.LinkTimeoutMs,
		"calibrate_cooldown_ms": d.CalibrateCooldownMs,
		"water_threshold_ticks": d.WaterThresholdTicks,
		"history_every_ticks":   d.HistoryEveryTicks,
		"history_points":        d.HistoryPoints,
	} {
		if v < 0 {
			return fmt.Errorf("display.%s must be >= 0", name)
		}
	}

	// ------------------------------------------------------------
	// DISPLAY STATUS BLOCK (OPT-IN)
	// ------------------------------------------------------------

	sm := d.StatusMemory
	if sm.Enabled() {
		if sm.Endpoint == "" {
			return fmt.Errorf("display.status_memory: status_slot is set but endpoint is empty")
		}
		last := int(*sm.StatusSlot)*status.SlotsPerDevice + status.SlotsPerDevice - 1
		if last > 65535 {
			return fmt.Errorf("display.status_memory: status_slot %d runs past register 65535", *sm.StatusSlot)
		}
	}
	if sm.TimeoutMs < 0 {
		return fmt.Errorf("display.status_memory.timeout_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// MQTT / REDIS (OPT-IN)
	// ------------------------------------------------------------

	if d.MQTT.QoS > 2 {
		return fmt.Errorf("display.mqtt.qos %d: want 0, 1 or 2", d.MQTT.QoS)
	}
	if d.MQTT.TimeoutMs < 0 {
		return fmt.Errorf("display.mqtt.timeout_ms must be >= 0")
	}
	if d.Redis.DB < 0 || d.Redis.TTLSec < 0 {
		return fmt.Errorf("display.redis: db and ttl_s must be >= 0")
	}

	return nil
}
