package vdec

import (
	"sync/atomic"
	"time"
)

// accumulator records completion reason bits whether or not anyone waits.
type accumulator struct {
	bits  atomic.Uint32
	armed atomic.Bool // a waiter expects a completion

	// kick wakes a waiter early; stale kicks only cost one extra check.
	kick chan struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{kick: make(chan struct{}, 1)}
}

// post ORs bits in and wakes the waiter, if any.
// It reports whether a waiter was armed.
func (a *accumulator) post(bits uint32) bool {
	a.bits.Or(bits)
	select {
	case a.kick <- struct{}{}:
	default:
	}
	return a.armed.Load()
}

// take clears and returns the bits of mask that are set.
func (a *accumulator) take(mask uint32) uint32 {
	got := a.bits.Load() & mask
	if got != 0 {
		a.bits.And(^got)
	}
	return got
}

func (a *accumulator) clear() {
	a.bits.Store(0)
	select {
	case <-a.kick:
	default:
	}
}

func (a *accumulator) pending() uint32 { return a.bits.Load() }

// Notify feeds reason bits from the interrupt source. It never blocks and
// may be called from any goroutine, before or after the matching wait.
// Bits arriving while no command executes are counted as spurious; they are
// still kept.
func (m *Manager) Notify(bits uint32) {
	if bits == 0 {
		return
	}
	if !m.reasons.post(bits) && !m.busy.Load() {
		m.stats.spurious.Add(1)
	}
}

// waitReason is the interrupt-wait capability. It runs on the dispatcher.
//
// A bit already accumulated completes the wait at once. Otherwise it sleeps
// in CompletionSlice steps until the budget (or the command's shared
// deadline) runs out, re-reading the raw reason register after every slice
// that passes without a notification.
func (m *Manager) waitReason(mask uint32) bool {
	m.reasons.armed.Store(true)
	defer m.reasons.armed.Store(false)

	if got := m.reasons.take(mask); got != 0 {
		m.ack(got)
		return true
	}

	deadline := time.Now().Add(m.cfg.CompletionBudget)
	if fd := m.flight.deadline; !fd.IsZero() && fd.Before(deadline) {
		deadline = fd
	}

	timer := time.NewTimer(m.cfg.CompletionSlice)
	defer timer.Stop()

	for {
		left := time.Until(deadline)
		if left <= 0 {
			break
		}
		timer.Reset(min(m.cfg.CompletionSlice, left))

		select {
		case <-m.reasons.kick:
		case <-timer.C:
			m.pollReason()
		}

		if got := m.reasons.take(mask); got != 0 {
			m.ack(got)
			return true
		}
	}

	m.pollReason()
	if got := m.reasons.take(mask); got != 0 {
		m.ack(got)
		return true
	}

	m.flight.timedOut = true
	m.stats.timeouts.Add(1)
	m.log.Error("completion wait timed out",
		"mask", mask,
		"pending", m.reasons.pending(),
		"budget", m.cfg.CompletionBudget,
	)
	return false
}

// pollReason covers a missed notification by reading the register directly.
func (m *Manager) pollReason() {
	raw, err := m.bus.ReadReason()
	if err != nil {
		m.log.Warn("reason register read failed", "err", err)
		return
	}
	if raw != 0 {
		m.reasons.bits.Or(raw)
	}
}

func (m *Manager) ack(bits uint32) {
	if err := m.bus.AckReason(bits); err != nil {
		m.log.Warn("reason ack failed", "bits", bits, "err", err)
	}
}
