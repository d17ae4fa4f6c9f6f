// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/vdec-manager/internal/config"
	"github.com/tamzrod/vdec-manager/internal/hwreg"
)

// Build constructs the reason poller for a register bus.
// It returns nil, nil when polling is disabled (poll_interval_ms = 0).
func Build(r cfg.RegistersConfig, bus hwreg.Bus, sink Notifier) (*Poller, error) {
	if r.PollIntervalMs == 0 {
		return nil, nil
	}
	return New(
		Config{
			Name:     r.Bus + ":" + r.Endpoint,
			Interval: time.Duration(r.PollIntervalMs) * time.Millisecond,
		},
		bus,
		sink,
	)
}
