// internal/writer/payload.go
package writer

import (
	"encoding/json"
	"time"

	"github.com/tamzrod/posturelink/internal/display"
)

// viewPayload is the JSON document mirrored to MQTT and Redis.
type viewPayload struct {
	At                  time.Time `json:"at"`
	Device              string    `json:"device"`
	Alert               string    `json:"alert"`
	Connected           bool      `json:"connected"`
	Pitch               float64   `json:"pitch"`
	Roll                float64   `json:"roll"`
	Battery             int32     `json:"battery"`
	IndicatorOffset     int       `json:"indicator_offset"`
	Drinks              int       `json:"drinks"`
	WaterPercent        int       `json:"water_percent"`
	WaterRemaining      string    `json:"water_remaining"`
	HydrationDue        bool      `json:"hydration_due"`
	CalibrateEnabled    bool      `json:"calibrate_enabled"`
	Vibration           bool      `json:"vibration"`
	SecondsDisconnected int64     `json:"seconds_disconnected"`
	History             []int     `json:"history"`
}

func marshalView(device string, v display.View) ([]byte, error) {
	return json.Marshal(viewPayload{
		At:                  v.At.UTC(),
		Device:              device,
		Alert:               v.Header(),
		Connected:           v.Connected,
		Pitch:               v.Pitch,
		Roll:                v.Roll,
		Battery:             v.Battery,
		IndicatorOffset:     v.IndicatorOffset,
		Drinks:              v.Drinks,
		WaterPercent:        v.WaterPercent,
		WaterRemaining:      v.WaterClock,
		HydrationDue:        v.HydrationDue,
		CalibrateEnabled:    v.CalibrateEnabled,
		Vibration:           v.Vibration,
		SecondsDisconnected: int64(v.Disconnected / time.Second),
		History:             v.History,
	})
}
