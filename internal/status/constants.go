// internal/status/constants.go
package status

// Display status block layout constants.
// These values define the register protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of holding registers per display.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

const (
	SlotAlertCode           = 0
	SlotConnected           = 1
	SlotPitchDeci           = 2 // int16, degrees x10
	SlotRollDeci            = 3 // int16, degrees x10
	SlotBattery             = 4
	SlotDrinks              = 5
	SlotWaterRemaining      = 6 // seconds
	SlotSecondsDisconnected = 7
	SlotCalibrateEnabled    = 8
)

// LiveSlots is the number of slots rewritten incrementally.
const LiveSlots = SlotCalibrateEnabled + 1

// ---- RESERVED RANGE ----

// Slots 9-10 are reserved.
const SlotReservedStart = 9
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// MaxSeconds is where second counters stop instead of wrapping.
const MaxSeconds = 65535

// ---- ALERT CODES ----

const (
	AlertSearching uint16 = 0
	AlertGood      uint16 = 1
	AlertSlouch    uint16 = 2
	AlertHydrate   uint16 = 3
)
