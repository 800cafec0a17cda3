// internal/writer/mqtt_sink.go
package writer

import (
	"context"
	"fmt"

	"github.com/tamzrod/posturelink/internal/display"
)

// MQTTSink publishes the view to <topic>/view whenever it changes.
// Messages are not retained; a late subscriber waits for the next change.
type MQTTSink struct {
	pub    publisher
	topic  string
	qos    byte
	device string

	last    display.View
	pending bool // a previous publish failed
	started bool
}

func NewMQTTSink(pub publisher, topic string, qos byte, device string) *MQTTSink {
	return &MQTTSink{pub: pub, topic: topic + "/view", qos: qos, device: device}
}

func (m *MQTTSink) Topic() string { return m.topic }

func (m *MQTTSink) Show(_ context.Context, v display.View) error {
	if m.started && !m.pending && !v.Changed(m.last) {
		return nil
	}

	payload, err := marshalView(m.device, v)
	if err != nil {
		return fmt.Errorf("mqtt sink: marshal: %w", err)
	}
	if err := m.pub.Publish(m.topic, m.qos, false, payload); err != nil {
		m.pending = true
		return err
	}

	m.started = true
	m.pending = false
	m.last = v
	return nil
}
