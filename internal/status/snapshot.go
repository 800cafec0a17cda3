// internal/status/snapshot.go
package status

import (
	"math"
	"time"

	"github.com/tamzrod/posturelink/internal/alert"
	"github.com/tamzrod/posturelink/internal/display"
)

// Snapshot represents exactly what the status writer is allowed to deliver.
// Every field is already in register units.
type Snapshot struct {
	AlertCode           uint16
	Connected           uint16
	PitchDeci           int16
	RollDeci            int16
	Battery             uint16
	Drinks              uint16
	WaterRemaining      uint16
	SecondsDisconnected uint16
	CalibrateEnabled    uint16
}

// FromView converts one display tick into register units.
func FromView(v display.View) Snapshot {
	return Snapshot{
		AlertCode:           alertCode(v.Alert),
		Connected:           boolReg(v.Connected),
		PitchDeci:           deci(v.Pitch),
		RollDeci:            deci(v.Roll),
		Battery:             clampU16(int64(v.Battery)),
		Drinks:              clampU16(int64(v.Drinks)),
		WaterRemaining:      seconds(v.WaterRemaining),
		SecondsDisconnected: seconds(v.Disconnected),
		CalibrateEnabled:    boolReg(v.CalibrateEnabled),
	}
}

func alertCode(p alert.Priority) uint16 {
	switch p {
	case alert.Good:
		return AlertGood
	case alert.Slouch:
		return AlertSlouch
	case alert.Hydrate:
		return AlertHydrate
	default:
		return AlertSearching
	}
}

func boolReg(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

// deci saturates at the int16 range; NaN reads as 0.
func deci(deg float64) int16 {
	if math.IsNaN(deg) {
		return 0
	}
	v := math.Round(deg * 10)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// seconds MUST NOT wrap.
func seconds(d time.Duration) uint16 {
	return clampU16(int64(d / time.Second))
}

func clampU16(v int64) uint16 {
	if v < 0 {
		return 0
	}
	if v > MaxSeconds {
		return MaxSeconds
	}
	return uint16(v)
}
