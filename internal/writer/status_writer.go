// internal/writer/status_writer.go
package writer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/posturelink/internal/display"
	"github.com/tamzrod/posturelink/internal/status"
)

// StatusWriter is the delivery-only contract for the display status block.
// It receives a snapshot and writes it verbatim.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter mirrors the display state into holding registers.
type deviceStatusWriter struct {
	plan StatusPlan
	cli  endpointClient

	needFull bool
	last     []uint16
}

// NewDeviceStatusWriter builds a status writer for one block.
func NewDeviceStatusWriter(plan StatusPlan, cli endpointClient) (*deviceStatusWriter, error) {
	if cli == nil {
		return nil, fmt.Errorf("status writer: missing client for endpoint %s", plan.Endpoint)
	}
	if plan.UnitID > 255 {
		return nil, fmt.Errorf("status writer: unit id %d out of range", plan.UnitID)
	}
	return &deviceStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
	}, nil
}

// WriteStatus delivers a snapshot into status memory. Only slots that
// changed since the last delivery are written. On any write failure the
// next call re-asserts the full block, device name included.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	baseAddr := sw.baseAddr()
	unitID := uint8(sw.plan.UnitID)
	live := status.Live(s)

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		regs := status.Encode(s, sw.plan.DeviceName)
		if err := sw.cli.WriteRegisters(unitID, baseAddr, regs); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.needFull = false
		sw.last = live
		return nil
	}

	var errs []string

	for slot, v := range live {
		if sw.last[slot] == v {
			continue
		}
		if err := sw.cli.WriteRegisters(unitID, baseAddr+uint16(slot), []uint16{v}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
			continue
		}
		sw.last[slot] = v
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt; re-assert on next success.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each display owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

// StatusSink adapts a StatusWriter to the display loop.
type StatusSink struct {
	w StatusWriter
}

func NewStatusSink(w StatusWriter) *StatusSink { return &StatusSink{w: w} }

func (s *StatusSink) Show(_ context.Context, v display.View) error {
	return s.w.WriteStatus(status.FromView(v))
}
