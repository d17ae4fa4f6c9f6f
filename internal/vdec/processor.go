package vdec

import (
	"time"

	"github.com/tamzrod/vdec-manager/internal/codec"
)

// execute maps one command onto the codec core. A completion wait that ran
// out of budget turns the result into CODEC_EXIT whatever the core said.
func (m *Manager) execute(c *Command) (codec.Result, bool) {
	m.flight = inflight{cmd: c, deadline: c.deadline}
	defer func() { m.flight = inflight{} }()

	res := m.process(c)

	timedOut := m.flight.timedOut
	if timedOut && res != codec.CodecExit {
		m.log.Error("decode core presumed hung",
			"inst", c.Instance, "op", c.Op.String(), "core_result", res.String())
		res = codec.CodecExit
	}
	return res, timedOut
}

func (m *Manager) process(c *Command) codec.Result {
	if !c.Op.Valid() {
		return codec.InvalidParam
	}
	if c.Op == codec.OpInit {
		return m.doInit(c)
	}

	s, ok := m.q.slot(c.Instance)
	if !ok || s.closed {
		m.log.Warn("command on closed instance", "inst", c.Instance, "op", c.Op.String())
		return codec.InvalidParam
	}
	if c.Handle != 0 && c.Handle != s.handle {
		m.log.Warn("handle mismatch", "inst", c.Instance, "op", c.Op.String())
		return codec.InvalidParam
	}
	h := s.handle

	switch c.Op {
	case codec.OpSeqHeader:
		return m.doSeqHeader(c, &h)
	case codec.OpDecode:
		return m.doDecode(c, &h)
	case codec.OpClose:
		return m.doClose(c, &h)
	}

	if !passThroughParamOK(c.Op, c.Param1) {
		return codec.InvalidParam
	}
	return m.core.Process(c.Op, &h, c.Param1, c.Param2)
}

func (m *Manager) doInit(c *Command) codec.Result {
	inst := c.Instance

	s, _ := m.q.slot(inst)
	if !s.closed {
		m.log.Warn("init on open instance", "inst", inst)
		return codec.InvalidParam
	}

	if free := m.alloc.FreeSize(inst); free < m.cfg.WorkBufferSize {
		m.log.Warn("init: not enough buffer memory", "inst", inst, "free", free, "need", m.cfg.WorkBufferSize)
		return codec.InsufficientMemory
	}
	blk, err := m.alloc.Alloc(inst, m.cfg.WorkBufferSize)
	if err != nil {
		m.log.Warn("init: work buffer alloc failed", "inst", inst, "err", err)
		m.alloc.FreeInstance(inst)
		return codec.InsufficientMemory
	}

	p := &codec.InitParam{
		Instance:     inst,
		Capabilities: &hostCaps{m: m, inst: inst},
		WorkAddr:     blk.Addr,
		WorkSize:     blk.Size,
		Open:         c.Param1,
	}

	var h codec.Handle
	res := m.core.Process(codec.OpInit, &h, p, c.Param2)

	if res != codec.Success || h == 0 || m.flight.timedOut {
		if res == codec.Success {
			res = codec.Failure
		}
		m.alloc.FreeInstance(inst)
		m.log.Warn("init failed", "inst", inst, "result", res.String())
		return res
	}

	m.q.openSlot(inst, h)
	m.forceClosed.Store(false)
	c.Handle = h

	m.log.Info("instance opened", "inst", inst)
	return res
}

func (m *Manager) doSeqHeader(c *Command, h *codec.Handle) codec.Result {
	if p, ok := c.Param1.(*codec.SeqHeaderParam); !ok || p == nil {
		return codec.InvalidParam
	}
	info, ok := c.Param2.(*codec.SeqInfo)
	if !ok || info == nil {
		return codec.InvalidParam
	}

	res := m.core.Process(codec.OpSeqHeader, h, c.Param1, info)
	if res != codec.Success || m.flight.timedOut {
		return res
	}

	if _, err := m.pwr.Retune(info.Width, info.Height); err != nil {
		m.log.Error("clock retune failed", "inst", c.Instance, "width", info.Width, "height", info.Height, "err", err)
	}
	return res
}

func (m *Manager) doDecode(c *Command, h *codec.Handle) codec.Result {
	p, ok := c.Param1.(*codec.DecodeParam)
	if !ok || p == nil {
		return codec.InvalidParam
	}
	out, ok := c.Param2.(*codec.DecodeOutput)
	if !ok || out == nil {
		return codec.InvalidParam
	}

	m.q.noteInput(c.Instance, p.InputSize())

	res := m.core.Process(codec.OpDecode, h, p, out)

	// A hidden subframe with nothing to show is fed again once, so the
	// caller gets the frame that follows it.
	if !m.flight.timedOut && hideSubFrame(res, p, out) {
		m.stats.resubmits.Add(1)
		c.resubmitted = true
		m.log.Debug("resubmitting hidden subframe", "inst", c.Instance, "subframes", out.SubFrameCount)
		res = m.core.Process(codec.OpDecode, h, p, out)
	}
	return res
}

func hideSubFrame(res codec.Result, p *codec.DecodeParam, out *codec.DecodeOutput) bool {
	return res == codec.VP9SuperFrame &&
		!out.Displayable() &&
		p.SuperFrame == codec.HideSubFrames &&
		out.SubFrameCount <= 2
}

func (m *Manager) doClose(c *Command, h *codec.Handle) codec.Result {
	var res codec.Result
	if c.sweep && c.expired(time.Now()) {
		// sweep budget spent: drop the instance without asking the core
		res = codec.CodecExit
	} else {
		res = m.core.Process(codec.OpClose, h, c.Param1, c.Param2)
	}
	m.releaseSlot(c.Instance)
	return res
}

func (m *Manager) releaseSlot(inst int) {
	if m.q.closeSlot(inst) {
		freed := m.alloc.FreeInstance(inst)
		m.log.Info("instance closed", "inst", inst, "freed", freed)
	}
}

// passThroughParamOK checks the param1 shape of operations the manager does
// not otherwise interpret.
func passThroughParamOK(op codec.Op, p1 any) bool {
	switch op {
	case codec.OpRegisterFrameBuffer:
		fb, ok := p1.(*codec.FrameBuffers)
		return ok && fb != nil && len(fb.Addrs) > 0
	case codec.OpGetOutputInfo, codec.OpFlushOutput:
		o, ok := p1.(*codec.DecodeOutput)
		return ok && o != nil
	case codec.OpBufferFlagClear:
		fi, ok := p1.(*codec.FrameIndex)
		return ok && fi != nil && fi.Index >= 0
	case codec.OpGetBitstreamBuffer:
		rb, ok := p1.(*codec.RingBuffer)
		return ok && rb != nil
	case codec.OpUpdateBitstreamBuffer:
		ru, ok := p1.(*codec.RingUpdate)
		return ok && ru != nil && ru.Size >= 0
	case codec.OpGetVersion:
		v, ok := p1.(*codec.Version)
		return ok && v != nil
	case codec.OpSoftReset:
		return true
	}
	return false
}
