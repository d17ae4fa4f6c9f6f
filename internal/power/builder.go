package power

import (
	"log/slog"
	"time"

	cfg "github.com/tamzrod/vdec-manager/internal/config"
	"github.com/tamzrod/vdec-manager/internal/hwreg"
)

var tierByName = map[string]Tier{
	"uhd": TierUHD,
	"fhd": TierFHD,
	"hd":  TierHD,
	"sd":  TierSD,
}

// Build wires a Sequencer over a RegisterPlatform on bus.
// Tiers missing from c keep their DefaultTiers rates.
func Build(c cfg.ClocksConfig, bus hwreg.Bus, log *slog.Logger) (*Sequencer, error) {
	layers := Layers{
		Bus:  clocks(c.Bus),
		Core: clocks(c.Core),
		Leaf: clocks(c.Leaf),
	}

	plat, err := NewRegisterPlatform(bus, RegisterMap{
		GateAddr:  c.GateAddr,
		ResetAddr: c.ResetAddr,
		RateBase:  c.RateBase,
	}, layers)
	if err != nil {
		return nil, err
	}

	tiers := DefaultTiers
	for name, r := range c.Tiers {
		if t, ok := tierByName[name]; ok {
			tiers[t] = Rates{Bus: r.Bus, Core: r.Core, Leaf: r.Leaf}
		}
	}

	return New(Config{
		Layers:       layers,
		Tiers:        tiers,
		ResetDelay:   time.Duration(c.ResetDelayUs) * time.Microsecond,
		RestoreDelay: time.Duration(c.RestoreDelayMs) * time.Millisecond,
		Logger:       log,
	}, plat)
}

func clocks(names []string) []Clock {
	out := make([]Clock, len(names))
	for i, n := range names {
		out[i] = Clock(n)
	}
	return out
}
