package power

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Config is the minimal runtime config the sequencer needs.
type Config struct {
	Layers Layers
	Tiers  [4]Rates

	// ResetDelay is held between reset assert and deassert.
	ResetDelay time.Duration
	// RestoreDelay is held between the disable and enable halves of Restore.
	RestoreDelay time.Duration

	Logger *slog.Logger
	Sleep  func(time.Duration)
}

// Sequencer owns layered clock gating, reset, and resolution-driven retuning.
// All methods are safe for concurrent use.
type Sequencer struct {
	mu  sync.Mutex
	p   Platform
	cfg Config
	log *slog.Logger

	depth int // outstanding EnableClock calls

	resValid bool
	width    int
	height   int
	tier     Tier
	retunes  int
}

// New creates a sequencer over p.
func New(cfg Config, p Platform) (*Sequencer, error) {
	if p == nil {
		return nil, errors.New("power: platform required")
	}
	if len(cfg.Layers.All()) == 0 {
		cfg.Layers = DefaultLayers
	}
	if cfg.Tiers == ([4]Rates{}) {
		cfg.Tiers = DefaultTiers
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	lg := cfg.Logger
	if lg == nil {
		lg = slog.Default()
	}
	return &Sequencer{p: p, cfg: cfg, log: lg.With("component", "power")}, nil
}

// EnableClock ungates bus, then core, then leaf clocks.
func (s *Sequencer) EnableClock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enable()
}

// DisableClock gates clocks in the exact reverse of EnableClock.
// It is a no-op when nothing is enabled.
func (s *Sequencer) DisableClock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disable()
}

// Reset pulses the core reset line.
func (s *Sequencer) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.p.AssertReset(); err != nil {
		return fmt.Errorf("power: assert reset: %w", err)
	}
	s.cfg.Sleep(s.cfg.ResetDelay)
	if err := s.p.DeassertReset(); err != nil {
		return fmt.Errorf("power: deassert reset: %w", err)
	}
	return nil
}

// AssertReset holds the core in reset.
func (s *Sequencer) AssertReset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.p.AssertReset(); err != nil {
		return fmt.Errorf("power: assert reset: %w", err)
	}
	return nil
}

// Retune applies the tier rates for (width, height). It reports whether the
// clock tree was reprogrammed; an unchanged size is a no-op.
func (s *Sequencer) Retune(width, height int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resValid && s.width == width && s.height == height {
		return false, nil
	}

	tier := Classify(width, height)
	r := s.cfg.Tiers[tier]

	apply := func(clks []Clock, hz uint64) error {
		for _, c := range clks {
			if err := s.p.SetRate(c, hz); err != nil {
				return fmt.Errorf("power: set rate %s=%d: %w", c, hz, err)
			}
		}
		return nil
	}
	if err := apply(s.cfg.Layers.Bus, r.Bus); err != nil {
		return false, err
	}
	if err := apply(s.cfg.Layers.Core, r.Core); err != nil {
		return false, err
	}
	if err := apply(s.cfg.Layers.Leaf, r.Leaf); err != nil {
		return false, err
	}

	s.resValid = true
	s.width, s.height, s.tier = width, height, tier
	s.retunes++

	s.log.Info("clock retune", "width", width, "height", height, "tier", tier.String())
	return true, nil
}

// ForgetResolution clears the resolution cache so the next Retune applies.
func (s *Sequencer) ForgetResolution() {
	s.mu.Lock()
	s.resValid = false
	s.mu.Unlock()
}

// Restore power-cycles the core after a fatal error: reset asserted,
// DisableClock n times, delay, EnableClock n times, reset deasserted.
// n is clamped to the current enable depth so the platform never underflows.
func (s *Sequencer) Restore(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > s.depth {
		s.log.Warn("restore count clamped", "want", n, "depth", s.depth)
		n = s.depth
	}

	var errs []error
	if err := s.p.AssertReset(); err != nil {
		errs = append(errs, fmt.Errorf("power: assert reset: %w", err))
	}
	for i := 0; i < n; i++ {
		if err := s.disable(); err != nil {
			errs = append(errs, err)
		}
	}
	s.cfg.Sleep(s.cfg.RestoreDelay)
	for i := 0; i < n; i++ {
		if err := s.enable(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.p.DeassertReset(); err != nil {
		errs = append(errs, fmt.Errorf("power: deassert reset: %w", err))
	}

	s.log.Warn("clock restore", "count", n, "errors", len(errs))
	return errors.Join(errs...)
}

// Snapshot is a read-only view of sequencer state.
type Snapshot struct {
	Depth   int
	Width   int
	Height  int
	Tier    string
	Retunes int
}

func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Depth: s.depth, Retunes: s.retunes}
	if s.resValid {
		snap.Width, snap.Height, snap.Tier = s.width, s.height, s.tier.String()
	}
	return snap
}

// ---- internal (caller holds mu) ----

// enable ungates every layer or none: a failure gates the clocks this call
// already enabled, in reverse.
func (s *Sequencer) enable() error {
	all := s.cfg.Layers.All()
	for i, c := range all {
		if err := s.p.EnableClock(c); err != nil {
			errs := []error{fmt.Errorf("power: enable %s: %w", c, err)}
			for j := i - 1; j >= 0; j-- {
				if derr := s.p.DisableClock(all[j]); derr != nil {
					errs = append(errs, fmt.Errorf("power: disable %s: %w", all[j], derr))
				}
			}
			return errors.Join(errs...)
		}
	}
	s.depth++
	return nil
}

func (s *Sequencer) disable() error {
	if s.depth == 0 {
		return nil
	}
	all := s.cfg.Layers.All()
	var errs []error
	for i := len(all) - 1; i >= 0; i-- {
		if err := s.p.DisableClock(all[i]); err != nil {
			errs = append(errs, fmt.Errorf("power: disable %s: %w", all[i], err))
		}
	}
	s.depth--
	return errors.Join(errs...)
}
