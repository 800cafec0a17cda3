// internal/status/status_test.go
package status

import (
	"testing"
	"time"

	"github.com/tamzrod/posturelink/internal/alert"
	"github.com/tamzrod/posturelink/internal/display"
)

func TestFromView(t *testing.T) {
	v := display.View{
		Alert:            alert.Slouch,
		Connected:        true,
		Pitch:            -20.46,
		Roll:             3.25,
		Battery:          95,
		Drinks:           3,
		WaterRemaining:   61500 * time.Millisecond,
		CalibrateEnabled: true,
	}

	s := FromView(v)

	want := Snapshot{
		AlertCode:        AlertSlouch,
		Connected:        1,
		PitchDeci:        -205,
		RollDeci:         33,
		Battery:          95,
		Drinks:           3,
		WaterRemaining:   61,
		CalibrateEnabled: 1,
	}
	if s != want {
		t.Fatalf("FromView() = %+v, want %+v", s, want)
	}
}

func TestSecondsDisconnectedSaturates(t *testing.T) {
	s := FromView(display.View{Disconnected: 30 * time.Hour})
	if s.SecondsDisconnected != MaxSeconds {
		t.Fatalf("seconds disconnected = %d, want %d", s.SecondsDisconnected, MaxSeconds)
	}
	if s.AlertCode != AlertSearching {
		t.Fatalf("alert code = %d, want searching", s.AlertCode)
	}
}

func TestDeciSaturates(t *testing.T) {
	s := FromView(display.View{Pitch: 1e9, Roll: -1e9})
	if s.PitchDeci != 32767 || s.RollDeci != -32768 {
		t.Fatalf("deci = %d/%d, want saturation", s.PitchDeci, s.RollDeci)
	}
}

func TestEncodeLayout(t *testing.T) {
	s := Snapshot{AlertCode: AlertHydrate, Connected: 1, PitchDeci: -1, Battery: 95, SecondsDisconnected: 7}
	regs := Encode(s, "DESK-01")

	if len(regs) != SlotsPerDevice {
		t.Fatalf("Encode() len = %d, want %d", len(regs), SlotsPerDevice)
	}
	if regs[SlotAlertCode] != AlertHydrate {
		t.Errorf("slot0 = %d", regs[SlotAlertCode])
	}
	if regs[SlotPitchDeci] != 0xFFFF {
		t.Errorf("slot2 = %#x, want two's complement -1", regs[SlotPitchDeci])
	}
	if regs[SlotSecondsDisconnected] != 7 {
		t.Errorf("slot7 = %d", regs[SlotSecondsDisconnected])
	}
	for i := SlotReservedStart; i <= SlotReservedEnd; i++ {
		if regs[i] != 0 {
			t.Errorf("reserved slot %d = %d, want 0", i, regs[i])
		}
	}
	if regs[SlotDeviceNameStart] != uint16('D')<<8|uint16('E') {
		t.Errorf("name slot = %#x", regs[SlotDeviceNameStart])
	}
	if regs[SlotDeviceNameStart+3] != uint16('1')<<8 {
		t.Errorf("odd-length name tail = %#x", regs[SlotDeviceNameStart+3])
	}
	if regs[SlotsPerDevice-1] != 0 {
		t.Errorf("slot19 = %d, want 0", regs[SlotsPerDevice-1])
	}
}

func TestEncodeDeviceNameSanitizesAndTruncates(t *testing.T) {
	regs := EncodeDeviceName("a\x01bcdefghijklmnopqrstuvwxyz")
	if regs[0] != uint16('a')<<8|uint16('?') {
		t.Fatalf("first reg = %#x", regs[0])
	}
	if regs[7] != uint16('n')<<8|uint16('o') {
		t.Fatalf("last reg = %#x, want truncation at 16 chars", regs[7])
	}
}
