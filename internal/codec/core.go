// Package codec defines the contract between the decode manager and the opaque
// codec core: operation and result codes, the capability interface the core calls
// back into, and the parameter shapes each operation carries.
package codec

// Handle is the opaque hardware handle the core returns from INIT.
// Zero means "no instance".
type Handle uint64

// Core is the external codec core. It performs one operation per call and
// reports a result code; it never returns Go errors.
type Core interface {
	Process(op Op, h *Handle, p1, p2 any) Result
}

// Capabilities are the host services installed into the core at INIT time.
type Capabilities interface {
	Copy(dst, src []byte) int
	Fill(dst []byte, v byte)

	// WaitInterrupt blocks until one of the reason bits in mask fires.
	// It returns false when the completion budget is exhausted.
	WaitInterrupt(mask uint32) bool

	ReadRegister(addr uint32) uint32
	WriteRegister(addr uint32, v uint32)
	SleepMicros(us int)

	// MapBuffer exposes size bytes of instance memory starting at addr.
	MapBuffer(addr uint64, size int) ([]byte, bool)
	UnmapBuffer(buf []byte)
}

// CoreFunc adapts a plain function to Core.
type CoreFunc func(op Op, h *Handle, p1, p2 any) Result

func (f CoreFunc) Process(op Op, h *Handle, p1, p2 any) Result { return f(op, h, p1, p2) }
