// Package simcore is a deterministic stand-in for the hardware codec core.
//
// Every operation that would touch the hardware writes the command register
// and waits for the done reason bit through the host capabilities, so the
// manager's completion path runs exactly as it would against silicon. Attach
// makes an in-memory register file raise that bit on each command write.
package simcore

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tamzrod/vdec-manager/internal/codec"
	"github.com/tamzrod/vdec-manager/internal/hwreg"
)

const (
	DefaultCmdAddr  uint32 = 0x0010
	DefaultDoneBit  uint32 = 1 << 0
	DefaultRingSize        = 64 << 10
)

// Version is what GET_VERSION reports.
var Version = codec.Version{Major: 1, Minor: 4, Patch: 0, Revision: 0x5349}

type Config struct {
	CmdAddr  uint32
	DoneBit  uint32
	RingSize int

	// Latency delays the done bit after a command write.
	Latency time.Duration
}

type instance struct {
	inst int
	caps codec.Capabilities
	work []byte

	seq     SeqHeader
	seqOK   bool
	frames  int
	decoded int
	last    codec.DecodeOutput

	// subframe cursor into the packet being decoded
	cursor int

	ringFill int
}

// Core implements codec.Core.
type Core struct {
	cfg Config

	mu    sync.Mutex
	next  uint32
	insts map[codec.Handle]*instance

	hung atomic.Bool
}

var _ codec.Core = (*Core)(nil)

func New(cfg Config) *Core {
	if cfg.CmdAddr == 0 {
		cfg.CmdAddr = DefaultCmdAddr
	}
	if cfg.DoneBit == 0 {
		cfg.DoneBit = DefaultDoneBit
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = DefaultRingSize
	}
	return &Core{cfg: cfg, insts: make(map[codec.Handle]*instance)}
}

// Attach makes mem raise the done bit whenever a command is written.
func (c *Core) Attach(mem *hwreg.Memory) {
	mem.OnWrite(func(addr, _ uint32) {
		if addr != c.cfg.CmdAddr || c.hung.Load() {
			return
		}
		if c.cfg.Latency <= 0 {
			mem.Raise(c.cfg.DoneBit)
			return
		}
		time.AfterFunc(c.cfg.Latency, func() { mem.Raise(c.cfg.DoneBit) })
	})
}

// SetHung stops (or resumes) completion signalling on attached registers.
func (c *Core) SetHung(v bool) { c.hung.Store(v) }

// Open reports how many instances the core currently holds.
func (c *Core) Open() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.insts)
}

func (c *Core) Process(op codec.Op, h *codec.Handle, p1, p2 any) codec.Result {
	if h == nil {
		return codec.InvalidParam
	}
	if op == codec.OpInit {
		return c.init(h, p1)
	}

	c.mu.Lock()
	in, ok := c.insts[*h]
	c.mu.Unlock()
	if !ok {
		return codec.InvalidParam
	}

	switch op {
	case codec.OpGetVersion:
		v, ok := p1.(*codec.Version)
		if !ok || v == nil {
			return codec.InvalidParam
		}
		*v = Version
		return codec.Success
	case codec.OpGetOutputInfo:
		o, ok := p1.(*codec.DecodeOutput)
		if !ok || o == nil {
			return codec.InvalidParam
		}
		*o = in.last
		return codec.Success
	case codec.OpGetBitstreamBuffer:
		rb, ok := p1.(*codec.RingBuffer)
		if !ok || rb == nil {
			return codec.InvalidParam
		}
		rb.ReadAddr = 0
		rb.WriteAddr = uint64(in.ringFill)
		rb.Room = c.cfg.RingSize - in.ringFill
		return codec.Success
	}

	if op == codec.OpClose {
		c.mu.Lock()
		delete(c.insts, *h)
		c.mu.Unlock()
		*h = 0
	}

	if !c.command(in, op) {
		return codec.CodecExit
	}

	switch op {
	case codec.OpSeqHeader:
		return c.seqHeader(in, p1, p2)
	case codec.OpRegisterFrameBuffer:
		return c.registerFrames(in, p1)
	case codec.OpDecode:
		return c.decode(in, p1, p2)
	case codec.OpBufferFlagClear:
		fi, ok := p1.(*codec.FrameIndex)
		if !ok || fi == nil || fi.Index >= in.frames {
			return codec.InvalidParam
		}
		return codec.Success
	case codec.OpFlushOutput:
		in.cursor = 0
		if o, ok := p1.(*codec.DecodeOutput); ok && o != nil {
			*o = codec.DecodeOutput{DisplayIndex: codec.NoDisplay, DecodedIndex: codec.NoDisplay}
		}
		return codec.Success
	case codec.OpUpdateBitstreamBuffer:
		ru, ok := p1.(*codec.RingUpdate)
		if !ok || ru == nil {
			return codec.InvalidParam
		}
		if in.ringFill+ru.Size > c.cfg.RingSize {
			return codec.BufFull
		}
		in.ringFill += ru.Size
		return codec.Success
	case codec.OpSoftReset:
		in.cursor, in.ringFill = 0, 0
		return codec.Success
	case codec.OpClose:
		return codec.Success
	}
	return codec.InvalidParam
}

func (c *Core) init(h *codec.Handle, p1 any) codec.Result {
	p, ok := p1.(*codec.InitParam)
	if !ok || p == nil || p.Capabilities == nil {
		return codec.InvalidParam
	}

	work, ok := p.Capabilities.MapBuffer(p.WorkAddr, p.WorkSize)
	if !ok {
		return codec.InsufficientMemory
	}
	p.Capabilities.Fill(work, 0)

	in := &instance{inst: p.Instance, caps: p.Capabilities, work: work}
	if !c.command(in, codec.OpInit) {
		p.Capabilities.UnmapBuffer(work)
		return codec.CodecExit
	}

	c.mu.Lock()
	// an instance the manager dropped without a CLOSE is stale
	for old, o := range c.insts {
		if o.inst == p.Instance {
			delete(c.insts, old)
		}
	}
	c.next++
	*h = codec.Handle(uint64(p.Instance+1)<<32 | uint64(c.next))
	c.insts[*h] = in
	c.mu.Unlock()
	return codec.Success
}

// command kicks the hardware and waits for completion.
func (c *Core) command(in *instance, op codec.Op) bool {
	in.caps.WriteRegister(c.cfg.CmdAddr, uint32(op)|uint32(in.inst)<<8)
	return in.caps.WaitInterrupt(c.cfg.DoneBit)
}

func (c *Core) seqHeader(in *instance, p1, p2 any) codec.Result {
	p, ok := p1.(*codec.SeqHeaderParam)
	if !ok || p == nil {
		return codec.InvalidParam
	}
	info, ok := p2.(*codec.SeqInfo)
	if !ok || info == nil {
		return codec.InvalidParam
	}

	hdr, err := ParseSeqHeader(p.Bitstream)
	switch {
	case errors.Is(err, errShort):
		return codec.InsufficientBitstream
	case err != nil:
		return codec.Failure
	}
	if hdr.Width == 0 || hdr.Height == 0 {
		return codec.Failure
	}

	in.seq, in.seqOK = hdr, true
	*info = codec.SeqInfo{
		Width:           hdr.Width,
		Height:          hdr.Height,
		MinFrameBuffers: hdr.MinFrameBuffers,
		Profile:         hdr.Profile,
	}
	return codec.Success
}

func (c *Core) registerFrames(in *instance, p1 any) codec.Result {
	fb, ok := p1.(*codec.FrameBuffers)
	if !ok || fb == nil || !in.seqOK {
		return codec.InvalidParam
	}
	if len(fb.Addrs) < in.seq.MinFrameBuffers {
		return codec.InsufficientMemory
	}
	in.frames = len(fb.Addrs)
	return codec.Success
}

// decode runs one subframe of the packet. A packet with subframes left
// reports VP9_SUPER_FRAME; the next DECODE continues from the cursor.
func (c *Core) decode(in *instance, p1, p2 any) codec.Result {
	p, ok := p1.(*codec.DecodeParam)
	if !ok || p == nil {
		return codec.InvalidParam
	}
	out, ok := p2.(*codec.DecodeOutput)
	if !ok || out == nil {
		return codec.InvalidParam
	}
	if in.frames == 0 {
		return codec.Failure
	}

	hdr, err := ParsePacket(p.Bitstream)
	switch {
	case errors.Is(err, errShort):
		return codec.InsufficientBitstream
	case err != nil:
		return codec.Failure
	}
	if in.cursor >= hdr.SubFrames {
		in.cursor = 0
	}

	idx := in.decoded % in.frames
	in.decoded++

	*out = codec.DecodeOutput{
		DisplayIndex:  codec.NoDisplay,
		DecodedIndex:  idx,
		SubFrameCount: hdr.SubFrames,
	}
	if hdr.Shown(in.cursor) {
		out.DisplayIndex = idx
	}
	in.cursor++

	res := codec.Success
	if in.cursor < hdr.SubFrames {
		res = codec.VP9SuperFrame
	} else {
		in.cursor = 0
		out.Consumed = len(p.Bitstream)
	}
	in.last = *out
	return res
}
