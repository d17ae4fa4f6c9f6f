// internal/status/constants.go
package status

// Manager Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerBlock is the fixed number of registers per status block.
const SlotsPerBlock = 24

// ---- SLOT INDICES ----

const (
	SlotHealthCode     = 0
	SlotLastResult     = 1 // int16 result code, two's complement
	SlotSecondsInError = 2
	SlotOpenCount      = 3
	SlotOpenBitmapHi   = 4 // instances 31..16
	SlotOpenBitmapLo   = 5 // instances 15..0
	SlotFatal          = 6
	SlotTimeouts       = 7
	SlotResubmits      = 8
)

// SlotLiveEnd is one past the last live slot.
const SlotLiveEnd = SlotResubmits + 1

// ---- RESERVED RANGE ----

// Slots 9–15 are reserved for future use.
const SlotReservedStart = 9
const SlotReservedEnd = 15

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 16

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// MaxInstances is the width of the open instance bitmap.
const MaxInstances = 32

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a powered core whose last command was not fatal.
const HealthOK uint16 = 1

// HealthError represents a core that needed fatal recovery and has not
// completed a command since.
const HealthError uint16 = 2

// HealthDown represents a core with no open references (powered down).
const HealthDown uint16 = 4
