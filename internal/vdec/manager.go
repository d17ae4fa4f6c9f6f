// Package vdec serializes decode commands from many logical instances onto one
// hardware decode core.
//
// A Manager owns the instance slot table, the command queue, the completion
// reason accumulator and the single dispatcher goroutine that talks to the
// codec core. Callers enqueue commands and block on their completion channel;
// the dispatcher executes them strictly in FIFO order, one at a time.
//
// A fatal result (CODEC_EXIT, or a completion wait that runs out of budget)
// power-cycles the core and force-closes every instance, not only the one that
// failed.
package vdec

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/vdec-manager/internal/bufalloc"
	"github.com/tamzrod/vdec-manager/internal/codec"
	"github.com/tamzrod/vdec-manager/internal/hwreg"
)

// Config is the runtime config of a Manager. Zero fields take defaults.
type Config struct {
	MaxInstances int

	IdleWait         time.Duration // dispatcher idle wait
	CompletionSlice  time.Duration
	CompletionBudget time.Duration
	ForceCloseBudget time.Duration // shared by all CLOSEs of one sweep

	WorkBufferSize int

	Logger *slog.Logger
}

const (
	DefaultMaxInstances     = 8
	DefaultIdleWait         = 50 * time.Millisecond
	DefaultCompletionSlice  = 5 * time.Millisecond
	DefaultCompletionBudget = 500 * time.Millisecond
	DefaultForceCloseBudget = 200 * time.Millisecond
	DefaultWorkBufferSize   = 256 << 10
)

func (c *Config) applyDefaults() {
	if c.MaxInstances <= 0 {
		c.MaxInstances = DefaultMaxInstances
	}
	if c.IdleWait <= 0 {
		c.IdleWait = DefaultIdleWait
	}
	if c.CompletionSlice <= 0 {
		c.CompletionSlice = DefaultCompletionSlice
	}
	if c.CompletionBudget <= 0 {
		c.CompletionBudget = DefaultCompletionBudget
	}
	if c.ForceCloseBudget <= 0 {
		c.ForceCloseBudget = DefaultForceCloseBudget
	}
	if c.WorkBufferSize <= 0 {
		c.WorkBufferSize = DefaultWorkBufferSize
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// PowerSequencer is the part of power.Sequencer the manager drives.
type PowerSequencer interface {
	EnableClock() error
	DisableClock() error
	Reset() error
	AssertReset() error
	Retune(width, height int) (bool, error)
	Restore(n int) error
	ForgetResolution()
}

// Trace describes one executed command.
type Trace struct {
	ID          string
	Instance    int
	Op          codec.Op
	Result      codec.Result
	Enqueued    time.Time
	Started     time.Time
	Finished    time.Time
	Resubmitted bool
	TimedOut    bool
	Sweep       bool
}

// Recorder receives a Trace for every executed command.
type Recorder interface {
	Record(t Trace)
}

// Deps are the collaborators of a Manager.
type Deps struct {
	Core     codec.Core
	Bus      hwreg.Bus
	Power    PowerSequencer
	Alloc    bufalloc.Allocator
	Recorder Recorder // optional
}

type counters struct {
	commands   atomic.Uint64
	fatal      atomic.Uint64
	timeouts   atomic.Uint64
	resubmits  atomic.Uint64
	spurious   atomic.Uint64
	dropped    atomic.Uint64
	lastResult atomic.Int32
}

func (c *counters) reset() {
	c.commands.Store(0)
	c.fatal.Store(0)
	c.timeouts.Store(0)
	c.resubmits.Store(0)
	c.spurious.Store(0)
	c.dropped.Store(0)
	c.lastResult.Store(int32(codec.Success))
}

// inflight is dispatcher-only state for the command being executed.
type inflight struct {
	cmd      *Command
	deadline time.Time
	timedOut bool
}

// Manager is the decode core's command dispatcher and lifecycle owner.
type Manager struct {
	cfg     Config
	log     *slog.Logger
	session string

	core  codec.Core
	bus   hwreg.Bus
	pwr   PowerSequencer
	alloc bufalloc.Allocator
	rec   Recorder

	q       *queue
	reasons *accumulator
	flight  inflight

	lifeMu      sync.Mutex
	detaching   bool // guarded by lifeMu
	refs        atomic.Int32
	forceClosed atomic.Bool
	busy        atomic.Bool // dispatcher is executing a command

	stats counters

	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	done      chan struct{}
}

// New attaches a manager. All slots start closed. Call Start to run the
// dispatcher.
func New(cfg Config, deps Deps) (*Manager, error) {
	if deps.Core == nil {
		return nil, errors.New("vdec: codec core required")
	}
	if deps.Bus == nil {
		return nil, errors.New("vdec: register bus required")
	}
	if deps.Power == nil {
		return nil, errors.New("vdec: power sequencer required")
	}
	if deps.Alloc == nil {
		return nil, errors.New("vdec: buffer allocator required")
	}
	cfg.applyDefaults()

	session := uuid.NewString()
	lg := cfg.Logger.With("component", "vdec", "session", session)

	m := &Manager{
		cfg:     cfg,
		log:     lg,
		session: session,
		core:    deps.Core,
		bus:     deps.Bus,
		pwr:     deps.Power,
		alloc:   deps.Alloc,
		rec:     deps.Recorder,
		q:       newQueue(cfg.MaxInstances, lg),
		reasons: newAccumulator(),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	m.stats.reset()
	return m, nil
}

// Start launches the dispatcher. Extra calls are no-ops. Commands are
// refused with ErrNotStarted until it runs.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		m.q.start()
		go m.run()
	})
}

// Stop detaches the manager: any remaining opens are torn down as if closed,
// the queue stops accepting commands, and the dispatcher exits. Commands left
// in the queue complete with FAILURE.
func (m *Manager) Stop(ctx context.Context) error {
	var err error
	m.stopOnce.Do(func() {
		m.lifeMu.Lock()
		m.detaching = true
		if n := m.refs.Load(); n > 0 {
			m.log.Warn("detach with open references", "refs", n)
			err = m.powerDown(ctx)
			for m.refs.Load() > 0 {
				if derr := m.pwr.DisableClock(); derr != nil {
					err = errors.Join(err, derr)
				}
				m.refs.Add(-1)
			}
		}
		m.lifeMu.Unlock()

		m.q.stop()
		close(m.quit)
		m.startOnce.Do(func() { close(m.done) })
		<-m.done

		for _, c := range m.q.takeAll() {
			if c.Result != nil {
				*c.Result = codec.Failure
			}
			c.finish()
		}
	})
	return err
}

// Session identifies this attach.
func (m *Manager) Session() string { return m.session }

// OpenCount returns the open reference count.
func (m *Manager) OpenCount() int { return int(m.refs.Load()) }

// Slots returns a copy of the instance slot table.
func (m *Manager) Slots() []SlotState { return m.q.snapshot() }

// Stats are the manager's debug counters. They reset on bring-up.
type Stats struct {
	Session      string `json:"session"`
	OpenCount    int    `json:"open_count"`
	Queued       int    `json:"queued"`
	Accepted     uint64 `json:"accepted"`
	Commands     uint64 `json:"commands"`
	Fatal        uint64 `json:"fatal"`
	Timeouts     uint64 `json:"timeouts"`
	Resubmits    uint64 `json:"resubmits"`
	Spurious     uint64 `json:"spurious"`
	Dropped      uint64 `json:"dropped"`
	LastResult   string `json:"last_result"`
	LastResultID int32  `json:"last_result_code"`
}

func (m *Manager) Stats() Stats {
	queued, accepted := m.q.counts()
	last := codec.Result(m.stats.lastResult.Load())
	return Stats{
		Session:      m.session,
		OpenCount:    int(m.refs.Load()),
		Queued:       queued,
		Accepted:     accepted,
		Commands:     m.stats.commands.Load(),
		Fatal:        m.stats.fatal.Load(),
		Timeouts:     m.stats.timeouts.Load(),
		Resubmits:    m.stats.resubmits.Load(),
		Spurious:     m.stats.spurious.Load(),
		Dropped:      m.stats.dropped.Load(),
		LastResult:   last.String(),
		LastResultID: int32(last),
	}
}
