// internal/writer/builder.go
package writer

import (
	"context"
	"fmt"
	"io"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	cfg "github.com/tamzrod/posturelink/internal/config"
	wmodbus "github.com/tamzrod/posturelink/internal/writer/modbus"
	wmqtt "github.com/tamzrod/posturelink/internal/writer/mqtt"
)

// Build creates every enabled display adapter plus the console, in a fixed
// order: console, Modbus status block, MQTT mirror, Redis cache.
// Assumes config has already been validated and normalized.
// Any connection failure closes what was opened and fails the build.
func Build(ctx context.Context, c *cfg.Config, console io.Writer, log *zap.Logger) (Multi, func() error, error) {
	var (
		sinks   Multi
		closers []func() error
	)

	closeAll := func() error {
		var last error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				last = err
			}
		}
		return last
	}

	fail := func(err error) (Multi, func() error, error) {
		_ = closeAll()
		return nil, nil, err
	}

	if console != nil {
		sinks = append(sinks, NewConsole(console))
	}

	d := c.Display

	// ---- Modbus status block ----
	if d.StatusMemory.Enabled() {
		sm := d.StatusMemory
		cli, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: sm.Endpoint,
			Timeout:  sm.Timeout(),
		})
		if err != nil {
			return fail(fmt.Errorf("writer: status endpoint %s: %w", sm.Endpoint, err))
		}
		closers = append(closers, cli.Close)

		sw, err := NewDeviceStatusWriter(StatusPlan{
			Endpoint:   sm.Endpoint,
			UnitID:     uint32(sm.UnitID),
			BaseSlot:   *sm.StatusSlot,
			DeviceName: c.Device.Name,
		}, cli)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, NewStatusSink(sw))
		log.Info("status block enabled",
			zap.String("endpoint", sm.Endpoint),
			zap.Uint8("unit_id", sm.UnitID),
			zap.Uint16("status_slot", *sm.StatusSlot),
		)
	}

	// ---- MQTT mirror ----
	if d.MQTT.Enabled() {
		m := d.MQTT
		cli, err := wmqtt.NewClient(wmqtt.Config{
			Broker:   m.Broker,
			ClientID: m.ClientID,
			Username: m.Username,
			Password: m.Password,
			Timeout:  m.Timeout(),
		})
		if err != nil {
			return fail(err)
		}
		closers = append(closers, cli.Close)

		sink := NewMQTTSink(cli, m.Topic, m.QoS, c.Device.Name)
		sinks = append(sinks, sink)
		log.Info("mqtt mirror enabled", zap.String("broker", m.Broker), zap.String("topic", sink.Topic()))
	}

	// ---- Redis cache ----
	if d.Redis.Enabled() {
		r := d.Redis
		client := redis.NewClient(&redis.Options{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
		})
		closers = append(closers, client.Close)

		if err := client.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("writer: redis %s: %w", r.Addr, err))
		}
		sinks = append(sinks, NewRedisSink(client, r.Key, r.TTL(), c.Device.Name))
		log.Info("redis cache enabled", zap.String("addr", r.Addr), zap.String("key", r.Key))
	}

	return sinks, closeAll, nil
}
