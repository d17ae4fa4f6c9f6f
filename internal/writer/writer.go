// internal/writer/writer.go
package writer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tamzrod/vdec-manager/internal/codec"
	"github.com/tamzrod/vdec-manager/internal/status"
	"github.com/tamzrod/vdec-manager/internal/vdec"
)

// Source is what the publisher observes. vdec.Manager implements it.
type Source interface {
	Stats() vdec.Stats
	Slots() []vdec.SlotState
}

// Publisher turns manager observations into status snapshots and delivers
// them. It owns the health state machine; the StatusWriter stays dumb.
type Publisher struct {
	src      Source
	sw       StatusWriter
	interval time.Duration
	log      *slog.Logger

	snap status.Snapshot

	// fatal count and command count at the last observed recovery
	lastFatal  uint64
	commandsAt uint64
}

// NewPublisher wires a publisher. interval is the observation period.
func NewPublisher(src Source, sw StatusWriter, interval time.Duration, log *slog.Logger) (*Publisher, error) {
	if src == nil || sw == nil {
		return nil, errors.New("writer: source and status writer required")
	}
	if interval <= 0 {
		return nil, errors.New("writer: interval must be > 0")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		src:      src,
		sw:       sw,
		interval: interval,
		log:      log.With("component", "status"),
		snap:     status.Snapshot{Health: status.HealthUnknown},
	}, nil
}

// Observe folds one manager observation into the snapshot and reports
// whether it changed.
func (p *Publisher) Observe(st vdec.Stats, slots []vdec.SlotState) bool {
	prev := p.snap
	s := &p.snap

	// counters restart at every bring-up
	if st.Fatal < p.lastFatal || st.Commands < p.commandsAt {
		p.lastFatal, p.commandsAt = 0, 0
	}

	last := codec.Result(st.LastResultID)
	switch {
	case st.OpenCount == 0:
		s.Health = status.HealthDown
		s.SecondsInError = 0
	case st.Fatal > p.lastFatal:
		s.Health = status.HealthError
		p.lastFatal = st.Fatal
		p.commandsAt = st.Commands
	case s.Health == status.HealthError:
		// recovered once a later command completes non-fatally
		if st.Commands > p.commandsAt && !last.Fatal() {
			s.Health = status.HealthOK
			s.SecondsInError = 0
		}
	default:
		s.Health = status.HealthOK
	}

	s.LastResult = int16(st.LastResultID)
	s.OpenCount = status.Clamp(uint64(st.OpenCount))
	s.Fatal = status.Clamp(st.Fatal)
	s.Timeouts = status.Clamp(st.Timeouts)
	s.Resubmits = status.Clamp(st.Resubmits)

	s.OpenBitmap = 0
	for _, sl := range slots {
		if sl.Open && sl.Instance < status.MaxInstances {
			s.OpenBitmap |= 1 << uint(sl.Instance)
		}
	}

	return *s != prev
}

// Snapshot returns the current snapshot.
func (p *Publisher) Snapshot() status.Snapshot { return p.snap }

// Run delivers the boot snapshot, then observes every interval and ticks
// seconds-in-error at 1 Hz. It returns when ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	tick := time.NewTicker(p.interval)
	defer tick.Stop()

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	// Full block write on start (identity re-assert).
	p.write("start")

	for {
		select {
		case <-ctx.Done():
			return

		case <-tick.C:
			if p.Observe(p.src.Stats(), p.src.Slots()) {
				p.write("observe")
			}

		case <-secTicker.C:
			// Tick 1 Hz while in error.
			if p.snap.Health == status.HealthError && p.snap.SecondsInError < 0xFFFF {
				p.snap.SecondsInError++
				p.write("seconds tick")
			}
		}
	}
}

func (p *Publisher) write(what string) {
	if err := p.sw.WriteStatus(p.snap); err != nil {
		p.log.Warn("status write failed", "on", what, "err", err)
	}
}
