// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/vdec-manager/internal/hwreg"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	Name     string
	Interval time.Duration

	// Mask selects the reason bits this poller forwards; 0 means all.
	Mask uint32
}

// Poller stands in for the interrupt line on buses that have none: it reads
// the raw reason register on a clock, acknowledges what it saw and forwards
// it to the notifier.
type Poller struct {
	cfg  Config
	bus  hwreg.Bus
	sink Notifier
}

// New creates a poller with immutable config.
func New(cfg Config, bus hwreg.Bus, sink Notifier) (*Poller, error) {
	if cfg.Name == "" {
		return nil, errors.New("poller: name required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if bus == nil {
		return nil, errors.New("poller: register bus required")
	}
	if sink == nil {
		return nil, errors.New("poller: notifier required")
	}
	if cfg.Mask == 0 {
		cfg.Mask = ^uint32(0)
	}
	return &Poller{cfg: cfg, bus: bus, sink: sink}, nil
}

// PollOnce performs exactly one poll cycle.
// Bits are acknowledged before they are forwarded, as an interrupt handler
// would; a failed acknowledge aborts the cycle without forwarding.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		Name: p.cfg.Name,
		At:   time.Now(),
	}

	raw, err := p.bus.ReadReason()
	if err != nil {
		res.Err = fmt.Errorf("poller: read reason: %w", err)
		return res
	}

	bits := raw & p.cfg.Mask
	if bits == 0 {
		return res
	}

	if err := p.bus.AckReason(bits); err != nil {
		res.Err = fmt.Errorf("poller: ack reason 0x%X: %w", bits, err)
		return res
	}

	// Commit only if read and ack both succeeded
	p.sink.Notify(bits)
	res.Reason = bits
	return res
}
