// internal/status/encode.go
package status

// Encode converts a Snapshot into a full status block with an empty name.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerBlock)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastResult] = uint16(s.LastResult)
	regs[SlotSecondsInError] = s.SecondsInError
	regs[SlotOpenCount] = s.OpenCount
	regs[SlotOpenBitmapHi] = uint16(s.OpenBitmap >> 16)
	regs[SlotOpenBitmapLo] = uint16(s.OpenBitmap)
	regs[SlotFatal] = s.Fatal
	regs[SlotTimeouts] = s.Timeouts
	regs[SlotResubmits] = s.Resubmits

	// Slots 9..15 are RESERVED -> left as zero
	return regs
}

// EncodeBlock is Encode with the device name in place.
func EncodeBlock(s Snapshot, name string) []uint16 {
	regs := Encode(s)
	copy(regs[SlotDeviceNameStart:], EncodeName(name))
	return regs
}

// EncodeName packs up to 16 ASCII characters into 8 registers, two bytes
// per register, big-endian. Non-printable bytes become '?'.
func EncodeName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	for i := range b {
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

// Run is a contiguous range of changed live slots.
type Run struct {
	Slot int
	Regs []uint16
}

// Diff returns the live-slot runs that differ between prev and next.
func Diff(prev, next Snapshot) []Run {
	a, b := Encode(prev), Encode(next)

	var runs []Run
	for i := 0; i < SlotLiveEnd; i++ {
		if a[i] == b[i] {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].Slot+len(runs[n-1].Regs) == i {
			runs[n-1].Regs = append(runs[n-1].Regs, b[i])
			continue
		}
		runs = append(runs, Run{Slot: i, Regs: []uint16{b[i]}})
	}
	return runs
}
