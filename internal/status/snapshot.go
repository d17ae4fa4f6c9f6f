// internal/status/snapshot.go
package status

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastResult     int16
	SecondsInError uint16

	OpenCount  uint16
	OpenBitmap uint32 // bit i set when instance i is open

	Fatal     uint16
	Timeouts  uint16
	Resubmits uint16
}

// Clamp saturates a counter into one register. Counters MUST NOT wrap.
func Clamp(v uint64) uint16 {
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}
