// internal/poller/types.go
package poller

import "time"

// Notifier receives interrupt reason bits. vdec.Manager implements it.
type Notifier interface {
	Notify(bits uint32)
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	Name string
	At   time.Time

	// Reason holds the bits read (and acknowledged) this cycle; 0 means idle.
	Reason uint32

	Err error // non-nil means the poll cycle failed
}
