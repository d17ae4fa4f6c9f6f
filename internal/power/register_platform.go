package power

import (
	"fmt"
	"sync"

	"github.com/tamzrod/vdec-manager/internal/hwreg"
)

// RegisterMap places the clock controller in the register space.
// Clock i (enable order) owns gate bit i and the rate register RateBase+2*i.
type RegisterMap struct {
	GateAddr  uint32
	ResetAddr uint32
	RateBase  uint32
}

// DefaultRegisterMap is used when none is configured.
var DefaultRegisterMap = RegisterMap{
	GateAddr:  0x0100,
	ResetAddr: 0x0102,
	RateBase:  0x0110,
}

// RegisterPlatform drives clock gates, rates and reset through a register bus.
// Gates are reference counted per clock.
type RegisterPlatform struct {
	mu    sync.Mutex
	bus   hwreg.Bus
	rm    RegisterMap
	index map[Clock]int
	refs  map[Clock]int
}

// NewRegisterPlatform indexes the clocks of layers in enable order.
func NewRegisterPlatform(bus hwreg.Bus, rm RegisterMap, layers Layers) (*RegisterPlatform, error) {
	if bus == nil {
		return nil, fmt.Errorf("power: register bus required")
	}
	all := layers.All()
	if len(all) == 0 {
		all = DefaultLayers.All()
	}
	if len(all) > 32 {
		return nil, fmt.Errorf("power: %d clocks exceed gate register width", len(all))
	}
	if rm == (RegisterMap{}) {
		rm = DefaultRegisterMap
	}
	idx := make(map[Clock]int, len(all))
	for i, c := range all {
		if _, dup := idx[c]; dup {
			return nil, fmt.Errorf("power: duplicate clock %q", c)
		}
		idx[c] = i
	}
	return &RegisterPlatform{bus: bus, rm: rm, index: idx, refs: make(map[Clock]int)}, nil
}

func (p *RegisterPlatform) EnableClock(c Clock) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i, ok := p.index[c]
	if !ok {
		return fmt.Errorf("power: unknown clock %q", c)
	}
	if p.refs[c] == 0 {
		if err := p.updateGate(i, true); err != nil {
			return err
		}
	}
	p.refs[c]++
	return nil
}

func (p *RegisterPlatform) DisableClock(c Clock) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i, ok := p.index[c]
	if !ok {
		return fmt.Errorf("power: unknown clock %q", c)
	}
	if p.refs[c] == 0 {
		return nil
	}
	p.refs[c]--
	if p.refs[c] == 0 {
		return p.updateGate(i, false)
	}
	return nil
}

func (p *RegisterPlatform) SetRate(c Clock, hz uint64) error {
	i, ok := p.index[c]
	if !ok {
		return fmt.Errorf("power: unknown clock %q", c)
	}
	// rate registers hold kHz
	return p.bus.Write(p.rm.RateBase+uint32(2*i), uint32(hz/1000))
}

func (p *RegisterPlatform) AssertReset() error {
	return p.bus.Write(p.rm.ResetAddr, 1)
}

func (p *RegisterPlatform) DeassertReset() error {
	return p.bus.Write(p.rm.ResetAddr, 0)
}

func (p *RegisterPlatform) updateGate(bit int, on bool) error {
	v, err := p.bus.Read(p.rm.GateAddr)
	if err != nil {
		return fmt.Errorf("power: read gate: %w", err)
	}
	if on {
		v |= 1 << bit
	} else {
		v &^= 1 << bit
	}
	if err := p.bus.Write(p.rm.GateAddr, v); err != nil {
		return fmt.Errorf("power: write gate: %w", err)
	}
	return nil
}
