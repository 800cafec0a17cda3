// internal/packet/packet.go
package packet

import (
	"encoding/binary"
	"math"
)

// Record sizes on air. A buffer is accepted only when its length matches
// one of these exactly.
const (
	TelemetrySize = 12 // float32 pitch | float32 roll | int32 battery
	CommandSize   = 2  // uint8 id | uint8 value
)

// CommandKind is the command id byte.
type CommandKind uint8

const (
	CommandCalibrate    CommandKind = 1 // value ignored
	CommandSetVibration CommandKind = 2 // value 0/1
)

// Telemetry is one offset-corrected tilt sample.
type Telemetry struct {
	Pitch   float32
	Roll    float32
	Battery int32
}

// Command is a one-shot instruction from the display to the sender.
// There is no acknowledgement field.
type Command struct {
	Kind  CommandKind
	Value uint8
}

// Calibrate builds a calibrate command.
func Calibrate() Command { return Command{Kind: CommandCalibrate} }

// SetVibration builds a vibration toggle command.
func SetVibration(on bool) Command {
	c := Command{Kind: CommandSetVibration}
	if on {
		c.Value = 1
	}
	return c
}

// Enabled reports the vibration flag carried by a SetVibration command.
func (c Command) Enabled() bool { return c.Value == 1 }

// EncodeTelemetry serialises a sample, little-endian.
func EncodeTelemetry(t Telemetry) []byte {
	data := make([]byte, TelemetrySize)
	binary.LittleEndian.PutUint32(data[0:4], math.Float32bits(t.Pitch))
	binary.LittleEndian.PutUint32(data[4:8], math.Float32bits(t.Roll))
	binary.LittleEndian.PutUint32(data[8:12], uint32(t.Battery))
	return data
}

// DecodeTelemetry is length-checked only; field values are passed through.
func DecodeTelemetry(data []byte) (Telemetry, bool) {
	if len(data) != TelemetrySize {
		return Telemetry{}, false
	}
	return Telemetry{
		Pitch:   math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])),
		Roll:    math.Float32frombits(binary.LittleEndian.Uint32(data[4:8])),
		Battery: int32(binary.LittleEndian.Uint32(data[8:12])),
	}, true
}

func EncodeCommand(c Command) []byte {
	return []byte{byte(c.Kind), c.Value}
}

// DecodeCommand accepts unknown ids; the dispatcher decides what to ignore.
func DecodeCommand(data []byte) (Command, bool) {
	if len(data) != CommandSize {
		return Command{}, false
	}
	return Command{Kind: CommandKind(data[0]), Value: data[1]}, true
}
