// internal/display/view.go
package display

import (
	"time"

	"github.com/tamzrod/posturelink/internal/alert"
)

// View is everything a rendering adapter may read for one tick.
type View struct {
	At        time.Time
	Alert     alert.Priority
	Connected bool

	Pitch           float64
	Roll            float64
	Battery         int32
	IndicatorOffset int

	Drinks         int
	WaterPercent   int
	WaterRemaining time.Duration
	WaterClock     string
	HydrationDue   bool

	CalibrateEnabled bool
	Vibration        bool
	Disconnected     time.Duration
	Overwritten      uint64
	History          []int
}

// Header is the status line text.
func (v View) Header() string { return v.Alert.String() }

// CalibrateLabel is the calibrate control caption.
func (v View) CalibrateLabel() string {
	if v.CalibrateEnabled {
		return "CALIBRATE"
	}
	return "HOLD STILL..."
}

// Changed reports whether b would render differently from v. Timestamps,
// sub-second water time and the overwrite counter are ignored.
func (v View) Changed(b View) bool {
	return v.Alert != b.Alert ||
		v.Connected != b.Connected ||
		v.Pitch != b.Pitch ||
		v.Roll != b.Roll ||
		v.Battery != b.Battery ||
		v.Drinks != b.Drinks ||
		v.WaterClock != b.WaterClock ||
		v.CalibrateEnabled != b.CalibrateEnabled ||
		v.Vibration != b.Vibration ||
		len(v.History) != len(b.History) ||
		lastPoint(v.History) != lastPoint(b.History)
}

func lastPoint(h []int) int {
	if len(h) == 0 {
		return -1
	}
	return h[len(h)-1]
}
