// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultDeviceName = "posturelink"
	DefaultGroup      = "239.255.42.99"
	DefaultBasePort   = 42000
	DefaultChannel    = 1

	DefaultBattery       = 95
	DefaultSourceTimeout = 1000

	DefaultTickMs              = 30
	DefaultLinkTimeoutMs       = 3000
	DefaultCalibrateCooldownMs = 3000
	DefaultHistoryPoints       = 60

	// Tick-counted intervals. The tick defaults are derived from these and
	// the configured tick_ms.
	DefaultWaterIntervalMs   = 60 * 60 * 1000
	DefaultHistoryIntervalMs = 60 * 1000

	DefaultStatusTimeoutMs = 1000
	DefaultMQTTTopic       = "posturelink"
	DefaultMQTTTimeoutMs   = 5000
	DefaultRedisTTLSec     = 60
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ------------------------------------------------------------
	// DEVICE NAME
	// ------------------------------------------------------------

	// ASCII already validated; the status block holds 16 characters.
	if cfg.Device.Name == "" {
		cfg.Device.Name = DefaultDeviceName
	}
	if len(cfg.Device.Name) > 16 {
		cfg.Device.Name = cfg.Device.Name[:16]
	}

	// ------------------------------------------------------------
	// LINK + LOG
	// ------------------------------------------------------------

	if cfg.Link.Group == "" {
		cfg.Link.Group = DefaultGroup
	}
	if cfg.Link.BasePort == 0 {
		cfg.Link.BasePort = DefaultBasePort
	}
	if cfg.Link.Channel == 0 {
		cfg.Link.Channel = DefaultChannel
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	// ------------------------------------------------------------
	// SENDER
	// ------------------------------------------------------------

	s := &cfg.Sender
	if s.Battery == 0 {
		s.Battery = DefaultBattery
	}
	if s.Source.Kind == "" {
		s.Source.Kind = SourceFixed
	}
	if s.Source.TimeoutMs == 0 {
		s.Source.TimeoutMs = DefaultSourceTimeout
	}

	// ------------------------------------------------------------
	// DISPLAY
	// ------------------------------------------------------------

	d := &cfg.Display
	setDefault(&d.TickMs, DefaultTickMs)
	setDefault(&d.LinkTimeoutMs, DefaultLinkTimeoutMs)
	setDefault(&d.CalibrateCooldownMs, DefaultCalibrateCooldownMs)
	setDefault(&d.WaterThresholdTicks, ticksFor(DefaultWaterIntervalMs, d.TickMs))
	setDefault(&d.HistoryEveryTicks, ticksFor(DefaultHistoryIntervalMs, d.TickMs))
	setDefault(&d.HistoryPoints, DefaultHistoryPoints)
	setDefault(&d.StatusMemory.TimeoutMs, DefaultStatusTimeoutMs)

	if d.MQTT.Topic == "" {
		d.MQTT.Topic = DefaultMQTTTopic + "/" + cfg.Device.Name
	}
	setDefault(&d.MQTT.TimeoutMs, DefaultMQTTTimeoutMs)

	if d.Redis.Key == "" {
		d.Redis.Key = "posturelink:" + cfg.Device.Name + ":view"
	}
	setDefault(&d.Redis.TTLSec, DefaultRedisTTLSec)
}

// ticksFor is the tick count covering intervalMs, at least 1.
func ticksFor(intervalMs, tickMs int) int {
	if n := intervalMs / tickMs; n > 0 {
		return n
	}
	return 1
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
