// Package hwreg is the hardware register interface of the decode core.
package hwreg

import "errors"

// Bus is the set of register primitives the manager and its collaborators use.
// Registers are 32 bits wide.
type Bus interface {
	Read(addr uint32) (uint32, error)
	Write(addr uint32, v uint32) error

	// ReadReason returns the raw interrupt reason register.
	ReadReason() (uint32, error)
	// AckReason acknowledges (write-1-to-clear) the given reason bits.
	AckReason(mask uint32) error

	EnableIRQ() error
	DisableIRQ() error
}

// Layout places the interrupt registers in the register space.
type Layout struct {
	ReasonAddr    uint32
	AckAddr       uint32
	IRQEnableAddr uint32
}

// DefaultLayout is used when no layout is configured.
var DefaultLayout = Layout{
	ReasonAddr:    0x0040,
	AckAddr:       0x0042,
	IRQEnableAddr: 0x0044,
}

var errClosed = errors.New("hwreg: bus closed")
