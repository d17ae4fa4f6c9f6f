package vdec

import (
	"context"
	"time"

	"github.com/tamzrod/vdec-manager/internal/codec"
)

// Enqueue appends c to the command queue and wakes the dispatcher.
// It does not wait; use Done (or Submit) for completion.
func (m *Manager) Enqueue(c *Command) error {
	if c != nil && c.enqueued.IsZero() {
		c.enqueued = time.Now()
	}
	return m.q.add(c)
}

// Submit enqueues c and waits for it. A cancelled ctx abandons the wait
// only; the command still runs and writes its result.
func (m *Manager) Submit(ctx context.Context, c *Command) error {
	if c != nil && c.done == nil {
		c.done = make(chan struct{})
	}
	if err := m.Enqueue(c); err != nil {
		return err
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call runs one operation on an instance and returns its result code.
func (m *Manager) Call(ctx context.Context, inst int, op codec.Op, h codec.Handle, p1, p2 any) (codec.Result, error) {
	var res codec.Result
	c := NewCommand(inst, op, h, p1, p2, &res)
	if err := m.Submit(ctx, c); err != nil {
		return codec.Failure, err
	}
	return res, nil
}

// Init opens instance inst and returns its hardware handle.
func (m *Manager) Init(ctx context.Context, inst int, open any) (codec.Handle, codec.Result, error) {
	if !m.q.inRange(inst) {
		return 0, codec.InvalidParam, ErrInstanceRange
	}
	var res codec.Result
	c := NewCommand(inst, codec.OpInit, 0, open, nil, &res)
	if err := m.Submit(ctx, c); err != nil {
		return 0, codec.Failure, err
	}
	return c.Handle, res, nil
}

// run is the dispatcher: drain the queue, then wait for the doorbell, bounded
// by IdleWait so a lost signal costs at most one idle period.
func (m *Manager) run() {
	defer close(m.done)

	idle := time.NewTimer(m.cfg.IdleWait)
	defer idle.Stop()

	for {
		m.drain()

		idle.Reset(m.cfg.IdleWait)
		select {
		case <-m.quit:
			return
		case <-m.q.wake:
		case <-idle.C:
		}
	}
}

func (m *Manager) drain() {
	for {
		c := m.q.peekFirst()
		if c == nil {
			return
		}
		m.dispatch(c)
		m.q.remove(c)

		select {
		case <-m.quit:
			return
		default:
		}
	}
}

// dispatch executes one command. Bad entries are dropped without touching
// the rest of the queue.
func (m *Manager) dispatch(c *Command) {
	if c.Result == nil || c.done == nil {
		m.stats.dropped.Add(1)
		m.log.Error("dropping command without result slot or completion channel",
			"cmd", c.ID.String(), "inst", c.Instance, "op", c.Op.String())
		c.finish()
		return
	}
	if !m.q.inRange(c.Instance) {
		m.stats.dropped.Add(1)
		m.log.Error("dropping command for instance out of range",
			"cmd", c.ID.String(), "inst", c.Instance, "op", c.Op.String())
		*c.Result = codec.InvalidParam
		c.finish()
		return
	}

	started := time.Now()
	m.busy.Store(true)
	res, timedOut := m.execute(c)

	*c.Result = res
	m.q.note(c.Instance, c.Op)
	m.stats.commands.Add(1)
	m.stats.lastResult.Store(int32(res))

	switch {
	case res.Fatal() && c.sweep:
		m.log.Warn("sweep close failed", "inst", c.Instance, "result", res.String())
	case res.Fatal():
		m.recoverFatal(c)
	case res.Recoverable():
		m.log.Debug("recoverable result", "inst", c.Instance, "op", c.Op.String(), "result", res.String())
	case res != codec.Success:
		m.log.Info("command result", "inst", c.Instance, "op", c.Op.String(), "result", res.String())
	}

	m.busy.Store(false)

	if m.rec != nil {
		m.rec.Record(Trace{
			ID:          c.ID.String(),
			Instance:    c.Instance,
			Op:          c.Op,
			Result:      res,
			Enqueued:    c.enqueued,
			Started:     started,
			Finished:    time.Now(),
			Resubmitted: c.resubmitted,
			TimedOut:    timedOut,
			Sweep:       c.sweep,
		})
	}

	c.finish()
}

// recoverFatal power-cycles the core and force-closes every instance.
// It runs on the dispatcher, so the CLOSEs stay serialized with everything else.
func (m *Manager) recoverFatal(c *Command) {
	m.stats.fatal.Add(1)
	m.log.Error("fatal result, restoring decode core",
		"cmd", c.ID.String(), "inst", c.Instance, "op", c.Op.String())

	if err := m.pwr.Restore(int(m.refs.Load())); err != nil {
		m.log.Error("clock restore failed", "err", err)
	}
	m.reasons.clear()

	deadline := time.Now().Add(m.cfg.ForceCloseBudget)
	for _, inst := range m.q.openSlots() {
		var res codec.Result
		sc := NewCommand(inst, codec.OpClose, 0, nil, nil, &res)
		sc.sweep = true
		sc.deadline = deadline
		sc.state.Store(cmdQueued)
		res, _ = m.execute(sc)
		sc.finish()
		m.log.Info("force-closed instance", "inst", inst, "result", res.String())
	}
	m.forceClosed.Store(true)
}
