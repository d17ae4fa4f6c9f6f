package vdec

import (
	"time"

	"github.com/tamzrod/vdec-manager/internal/codec"
)

// hostCaps is what one instance's codec core calls back into.
type hostCaps struct {
	m    *Manager
	inst int
}

var _ codec.Capabilities = (*hostCaps)(nil)

func (c *hostCaps) Copy(dst, src []byte) int { return copy(dst, src) }

func (c *hostCaps) Fill(dst []byte, v byte) {
	for i := range dst {
		dst[i] = v
	}
}

func (c *hostCaps) WaitInterrupt(mask uint32) bool { return c.m.waitReason(mask) }

func (c *hostCaps) ReadRegister(addr uint32) uint32 {
	v, err := c.m.bus.Read(addr)
	if err != nil {
		c.m.log.Warn("register read failed", "inst", c.inst, "addr", addr, "err", err)
		return 0
	}
	return v
}

func (c *hostCaps) WriteRegister(addr uint32, v uint32) {
	if err := c.m.bus.Write(addr, v); err != nil {
		c.m.log.Warn("register write failed", "inst", c.inst, "addr", addr, "err", err)
	}
}

func (c *hostCaps) SleepMicros(us int) {
	if us > 0 {
		time.Sleep(time.Duration(us) * time.Microsecond)
	}
}

func (c *hostCaps) MapBuffer(addr uint64, size int) ([]byte, bool) {
	return c.m.alloc.Lookup(c.inst, addr, size)
}

// UnmapBuffer is a no-op: mapped views alias allocator memory.
func (c *hostCaps) UnmapBuffer([]byte) {}
