package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/vdec-manager/internal/bufalloc"
	"github.com/tamzrod/vdec-manager/internal/codec/simcore"
	"github.com/tamzrod/vdec-manager/internal/config"
	"github.com/tamzrod/vdec-manager/internal/hwreg"
	"github.com/tamzrod/vdec-manager/internal/monitor"
	"github.com/tamzrod/vdec-manager/internal/poller"
	"github.com/tamzrod/vdec-manager/internal/power"
	"github.com/tamzrod/vdec-manager/internal/trace"
	"github.com/tamzrod/vdec-manager/internal/vdec"
	"github.com/tamzrod/vdec-manager/internal/writer"
)

// app is one attach of the manager to a register bus, plus everything
// that observes it.
type app struct {
	cfg *config.Config
	log *slog.Logger

	bus  hwreg.Bus
	core *simcore.Core
	pwr  *power.Sequencer
	pool *bufalloc.Pool
	rec  *trace.Recorder
	mgr  *vdec.Manager
	mon  *monitor.Monitor

	closers []func() error
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// newApp wires the manager from a validated, normalized config.
func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	// --------------------
	// Register bus + codec core
	// --------------------

	bus, closeBus, err := hwreg.Build(cfg.Registers)
	if err != nil {
		return nil, fmt.Errorf("register bus: %w", err)
	}
	a.bus = bus
	a.closers = append(a.closers, closeBus)

	a.core = simcore.New(simcore.Config{})
	if mem, ok := bus.(*hwreg.Memory); ok {
		a.core.Attach(mem)
	}

	// --------------------
	// Collaborators
	// --------------------

	a.pwr, err = power.Build(cfg.Clocks, bus, log)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("power: %w", err)
	}

	a.pool, err = bufalloc.NewPool(bufalloc.Config{
		Capacity:      cfg.Memory.Capacity,
		InstanceQuota: cfg.Memory.InstanceQuota,
		Base:          cfg.Memory.Base,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("buffer memory: %w", err)
	}

	a.rec, err = trace.Build(cfg.Trace, log)
	if err != nil {
		a.close()
		return nil, err
	}

	deps := vdec.Deps{Core: a.core, Bus: bus, Power: a.pwr, Alloc: a.pool}
	if a.rec != nil {
		deps.Recorder = a.rec
		a.closers = append(a.closers, a.rec.Close)
	}

	a.mgr, err = vdec.New(vdec.Config{
		MaxInstances:     cfg.Manager.MaxInstances,
		IdleWait:         ms(cfg.Manager.IdleWaitMs),
		CompletionSlice:  ms(cfg.Manager.CompletionSliceMs),
		CompletionBudget: ms(cfg.Manager.CompletionBudgetMs),
		ForceCloseBudget: ms(cfg.Manager.ForceCloseBudgetMs),
		WorkBufferSize:   cfg.Manager.WorkBufferSize,
		Logger:           log,
	}, deps)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// start launches the dispatcher and the observers. The manager is not
// opened here.
func (a *app) start(ctx context.Context) error {
	a.mgr.Start()

	p, err := poller.Build(a.cfg.Registers, a.bus, a.mgr)
	if err != nil {
		return fmt.Errorf("poller: %w", err)
	}
	if p != nil {
		out := make(chan poller.PollResult)
		go p.Run(ctx, out)
		go a.logPollErrors(ctx, out)
	}

	pub, closeStatus, err := writer.Build(a.cfg.Status, a.cfg.Manager.MaxInstances, a.mgr, a.log)
	if err != nil {
		return fmt.Errorf("status writer: %w", err)
	}
	a.closers = append(a.closers, closeStatus)
	if pub != nil {
		go pub.Run(ctx)
	}

	a.mon, err = monitor.Build(ctx, a.cfg.Monitor, a.mgr, a.pwr, a.log)
	if err != nil {
		return err
	}
	return nil
}

// logPollErrors reports failed poll cycles once per failure streak.
func (a *app) logPollErrors(ctx context.Context, in <-chan poller.PollResult) {
	failing := false
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-in:
			switch {
			case res.Err != nil && !failing:
				a.log.Warn("reason poll failing", "poller", res.Name, "err", res.Err)
				failing = true
			case res.Err == nil && failing:
				a.log.Info("reason poll recovered", "poller", res.Name)
				failing = false
			}
		}
	}
}

// shutdown detaches the manager and releases everything newApp acquired.
func (a *app) shutdown(ctx context.Context) error {
	err := a.mgr.Stop(ctx)
	return errors.Join(err, a.close())
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
