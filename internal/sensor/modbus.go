// internal/sensor/modbus.go
package sensor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// AccelRegisters is the number of input registers read per sample: ax, ay, az.
const AccelRegisters = 3

// InputReader is the single Modbus operation the IMU source needs (FC 4).
// Payload is the raw big-endian register bytes.
type InputReader interface {
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
}

// ModbusConfig locates the accelerometer registers on a Modbus TCP bridge.
type ModbusConfig struct {
	Endpoint string
	UnitID   uint8
	Address  uint16
	Timeout  time.Duration
}

// Dialer opens one connection. It is called once per attempt.
type Dialer func() (InputReader, func() error, error)

// Modbus reads raw accelerometer counts over Modbus and converts them to tilt.
// The connection is reused while healthy. On a read failure it is discarded
// and the next ReadTilt dials again.
type Modbus struct {
	mu     sync.Mutex
	cfg    ModbusConfig
	dial   Dialer
	reader InputReader
	close  func() error
}

// NewModbus builds a source that dials lazily with goburrow/modbus TCP.
func NewModbus(cfg ModbusConfig) (*Modbus, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("sensor modbus: endpoint required")
	}
	return NewModbusWithDialer(cfg, tcpDialer(cfg)), nil
}

// NewModbusWithDialer uses dial for every connection attempt.
func NewModbusWithDialer(cfg ModbusConfig, dial Dialer) *Modbus {
	return &Modbus{cfg: cfg, dial: dial}
}

func tcpDialer(cfg ModbusConfig) Dialer {
	return func() (InputReader, func() error, error) {
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, nil, err
		}
		return modbus.NewClient(h), h.Close, nil
	}
}

func (m *Modbus) ReadTilt() (float64, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reader == nil {
		r, closeFn, err := m.dial()
		if err != nil {
			return 0, 0, fmt.Errorf("sensor modbus: dial %s: %w", m.cfg.Endpoint, err)
		}
		m.reader, m.close = r, closeFn
	}

	raw, err := m.reader.ReadInputRegisters(m.cfg.Address, AccelRegisters)
	if err != nil {
		m.discard()
		return 0, 0, fmt.Errorf("sensor modbus: read: %w", err)
	}
	if len(raw) < AccelRegisters*2 {
		m.discard()
		return 0, 0, fmt.Errorf("sensor modbus: short payload (%d bytes)", len(raw))
	}

	ax := int16(uint16(raw[0])<<8 | uint16(raw[1]))
	ay := int16(uint16(raw[2])<<8 | uint16(raw[3]))
	az := int16(uint16(raw[4])<<8 | uint16(raw[5]))

	pitch, roll := TiltFromAccel(ax, ay, az)
	return pitch, roll, nil
}

func (m *Modbus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.discard()
}

func (m *Modbus) discard() error {
	var err error
	if m.close != nil {
		err = m.close()
	}
	m.reader, m.close = nil, nil
	return err
}
