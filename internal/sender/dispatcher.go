// internal/sender/dispatcher.go
package sender

import (
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/posturelink/internal/packet"
)

// AckBlink is the indicator flash that acknowledges a vibration toggle.
const AckBlink = 50 * time.Millisecond

// Dispatcher applies commands received from the display to a Sampler.
// Commands are one-shot; nothing is acknowledged over the air. Apply only
// touches the sampler's atomic flags, so it never blocks the listener.
type Dispatcher struct {
	s   *Sampler
	log *zap.Logger
}

func NewDispatcher(s *Sampler, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{s: s, log: log}
}

// Handle is a link handler. Anything that is not a command record,
// including our own telemetry heard back on the channel, is dropped.
func (d *Dispatcher) Handle(data []byte) {
	cmd, ok := packet.DecodeCommand(data)
	if !ok {
		return
	}
	d.Apply(cmd)
}

// Apply executes one command. Unknown ids are ignored.
func (d *Dispatcher) Apply(cmd packet.Command) {
	switch cmd.Kind {
	case packet.CommandCalibrate:
		d.log.Info("calibration requested remotely")
		d.s.RequestCalibration()

	case packet.CommandSetVibration:
		on := cmd.Enabled()
		d.s.SetVibration(on)
		d.s.Acknowledge()
		d.log.Info("vibration set", zap.Bool("enabled", on))

	default:
		d.log.Debug("unknown command ignored",
			zap.Uint8("id", uint8(cmd.Kind)),
			zap.Uint8("value", cmd.Value),
		)
	}
}
