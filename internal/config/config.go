// internal/config/config.go
package config

import "time"

type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Link    LinkConfig    `yaml:"link"`
	Log     LogConfig     `yaml:"log"`
	Sender  SenderConfig  `yaml:"sender"`
	Display DisplayConfig `yaml:"display"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Name string `yaml:"name"` // ASCII, max 16 chars after normalization
}

// ---- LINK ----

// LinkConfig is the one fixed logical channel both nodes share.
type LinkConfig struct {
	Group     string `yaml:"group"`
	BasePort  int    `yaml:"base_port"`
	Channel   int    `yaml:"channel"`
	Interface string `yaml:"interface"`
}

// Port is the UDP port of the configured channel.
func (l LinkConfig) Port() int { return l.BasePort + l.Channel }

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
}

// ---- SENDER ----

type SenderConfig struct {
	Battery int32        `yaml:"battery"`
	Source  SourceConfig `yaml:"source"`
}

const (
	SourceModbus = "modbus"
	SourceFixed  = "fixed"
)

// SourceConfig selects where raw tilt comes from.
type SourceConfig struct {
	Kind string `yaml:"kind"` // modbus | fixed

	// modbus
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Address   uint16 `yaml:"address"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// fixed
	Pitch float64 `yaml:"pitch"`
	Roll  float64 `yaml:"roll"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	TickMs              int `yaml:"tick_ms"`
	LinkTimeoutMs       int `yaml:"link_timeout_ms"`
	CalibrateCooldownMs int `yaml:"calibrate_cooldown_ms"`
	WaterThresholdTicks int `yaml:"water_threshold_ticks"`
	HistoryEveryTicks   int `yaml:"history_every_ticks"`
	HistoryPoints       int `yaml:"history_points"`

	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
	Redis        RedisConfig        `yaml:"redis"`
}

// StatusMemoryConfig is the opt-in Modbus status block.
type StatusMemoryConfig struct {
	Endpoint   string  `yaml:"endpoint"`
	UnitID     uint8   `yaml:"unit_id"`
	StatusSlot *uint16 `yaml:"status_slot"`
	TimeoutMs  int     `yaml:"timeout_ms"`
}

func (s StatusMemoryConfig) Enabled() bool { return s.StatusSlot != nil }

func (s StatusMemoryConfig) Timeout() time.Duration { return ms(s.TimeoutMs) }

// MQTTConfig is the opt-in view mirror. Empty broker = disabled.
type MQTTConfig struct {
	Broker    string `yaml:"broker"`
	ClientID  string `yaml:"client_id"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Topic     string `yaml:"topic"`
	QoS       byte   `yaml:"qos"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

func (m MQTTConfig) Enabled() bool { return m.Broker != "" }

func (m MQTTConfig) Timeout() time.Duration { return ms(m.TimeoutMs) }

// RedisConfig is the opt-in latest-view cache. Empty addr = disabled.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
	TTLSec   int    `yaml:"ttl_s"`
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

func (r RedisConfig) TTL() time.Duration { return time.Duration(r.TTLSec) * time.Second }

func (d DisplayConfig) Tick() time.Duration              { return ms(d.TickMs) }
func (d DisplayConfig) LinkTimeout() time.Duration       { return ms(d.LinkTimeoutMs) }
func (d DisplayConfig) CalibrateCooldown() time.Duration { return ms(d.CalibrateCooldownMs) }

func (s SourceConfig) Timeout() time.Duration { return ms(s.TimeoutMs) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
