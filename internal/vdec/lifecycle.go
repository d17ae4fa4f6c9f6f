package vdec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/vdec-manager/internal/codec"
)

// Open takes a reference on the decode core. The first reference brings the
// hardware up; every reference holds one clock enable.
func (m *Manager) Open() error {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	if m.detaching || m.q.isStopped() {
		return ErrStopped
	}

	if err := m.pwr.EnableClock(); err != nil {
		return fmt.Errorf("vdec: open: %w", err)
	}

	if m.refs.Load() == 0 {
		if err := m.bringUp(); err != nil {
			if derr := m.pwr.DisableClock(); derr != nil {
				err = errors.Join(err, derr)
			}
			return fmt.Errorf("vdec: bring-up: %w", err)
		}
	}

	n := m.refs.Add(1)
	m.log.Debug("open", "refs", n)
	return nil
}

func (m *Manager) bringUp() error {
	if err := m.pwr.Reset(); err != nil {
		return err
	}
	if err := m.bus.EnableIRQ(); err != nil {
		return err
	}
	if err := m.alloc.Init(); err != nil {
		_ = m.bus.DisableIRQ()
		return err
	}
	m.stats.reset()
	m.reasons.clear()
	m.pwr.ForgetResolution()
	m.forceClosed.Store(false)

	m.log.Info("decode core up")
	return nil
}

// Close drops a reference. The last one force-closes any instance still
// open and powers the core down. Closing with no references is a no-op.
func (m *Manager) Close(ctx context.Context) error {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	n := m.refs.Load()
	if n == 0 {
		m.log.Warn("close without open reference")
		return nil
	}

	var err error
	if n == 1 {
		err = m.powerDown(ctx)
	}
	if derr := m.pwr.DisableClock(); derr != nil {
		err = errors.Join(err, derr)
	}
	m.refs.Add(-1)

	if err != nil {
		return fmt.Errorf("vdec: close: %w", err)
	}
	return nil
}

// powerDown runs with lifeMu held, on the transition to zero references.
func (m *Manager) powerDown(ctx context.Context) error {
	if !m.forceClosed.Load() {
		m.sweep(ctx)
	}

	var errs []error
	if err := m.bus.DisableIRQ(); err != nil {
		errs = append(errs, err)
	}
	if err := m.pwr.AssertReset(); err != nil {
		errs = append(errs, err)
	}
	m.alloc.Release()

	m.log.Info("decode core down")
	return errors.Join(errs...)
}

// sweep sends CLOSE through the dispatcher to every open instance and waits
// for all of them under one shared deadline.
func (m *Manager) sweep(ctx context.Context) {
	open := m.q.openSlots()
	if len(open) == 0 {
		m.forceClosed.Store(true)
		return
	}

	deadline := time.Now().Add(m.cfg.ForceCloseBudget)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	cmds := make([]*Command, 0, len(open))
	for _, inst := range open {
		var res codec.Result
		c := NewCommand(inst, codec.OpClose, 0, nil, nil, &res)
		c.sweep = true
		c.deadline = deadline
		if err := m.Enqueue(c); err != nil {
			m.log.Warn("force-close enqueue failed", "inst", inst, "err", err)
			continue
		}
		cmds = append(cmds, c)
	}

	for i, c := range cmds {
		select {
		case <-c.done:
		case <-ctx.Done():
			m.log.Warn("force-close budget exhausted",
				"pending", len(cmds)-i, "budget", m.cfg.ForceCloseBudget)
			return
		}
	}

	m.forceClosed.Store(true)
	m.log.Info("force-close sweep done", "instances", len(cmds))
}
