// Package power sequences the clock and reset domains of the decode core.
package power

// Clock names one platform clock.
type Clock string

// Platform is the clock/reset collaborator. Only the Sequencer talks to it.
type Platform interface {
	EnableClock(c Clock) error
	DisableClock(c Clock) error
	SetRate(c Clock, hz uint64) error
	AssertReset() error
	DeassertReset() error
}

// Layers groups clocks by dependency. Dependents sit in later layers.
type Layers struct {
	Bus  []Clock
	Core []Clock
	Leaf []Clock
}

// All returns every clock in enable order.
func (l Layers) All() []Clock {
	out := make([]Clock, 0, len(l.Bus)+len(l.Core)+len(l.Leaf))
	out = append(out, l.Bus...)
	out = append(out, l.Core...)
	out = append(out, l.Leaf...)
	return out
}

// DefaultLayers is used when none are configured.
var DefaultLayers = Layers{
	Bus:  []Clock{"aclk"},
	Core: []Clock{"vce", "fio"},
	Leaf: []Clock{"hclk"},
}
