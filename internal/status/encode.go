// internal/status/encode.go
package status

// Encode converts a Snapshot into a full status block with the device name.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot, deviceName string) []uint16 {
	regs := make([]uint16, SlotsPerDevice)
	copy(regs, Live(s))

	// Slots 9-10 are RESERVED and left as zero.

	name := EncodeDeviceName(deviceName)
	copy(regs[SlotDeviceNameStart:SlotDeviceNameEnd+1], name)

	return regs
}

// Live returns slots 0..LiveSlots-1 in order.
func Live(s Snapshot) []uint16 {
	return []uint16{
		SlotAlertCode:           s.AlertCode,
		SlotConnected:           s.Connected,
		SlotPitchDeci:           uint16(s.PitchDeci),
		SlotRollDeci:            uint16(s.RollDeci),
		SlotBattery:             s.Battery,
		SlotDrinks:              s.Drinks,
		SlotWaterRemaining:      s.WaterRemaining,
		SlotSecondsDisconnected: s.SecondsDisconnected,
		SlotCalibrateEnabled:    s.CalibrateEnabled,
	}
}

// EncodeDeviceName packs up to 16 ASCII characters into 8 registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
