// internal/writer/types.go
package writer

import "github.com/tamzrod/posturelink/internal/display"

// Sink is a display adapter fed once per tick.
type Sink = display.Sink

// StatusPlan locates one display status block on a Modbus endpoint.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint32
	BaseSlot   uint16
	DeviceName string
}

// endpointClient is the exact contract the status writer uses.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// publisher is the MQTT operation the mirror needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}
