package hwreg

import "sync"

// Memory is an in-process register file. It backs the simulated codec core
// and tests; Raise plays the part of the hardware setting reason bits.
type Memory struct {
	mu      sync.Mutex
	regs    map[uint32]uint32
	layout  Layout
	irqOn   bool
	onWrite func(addr, v uint32)

	reads, writes int
}

// NewMemory returns an empty register file using layout (DefaultLayout if zero).
func NewMemory(layout Layout) *Memory {
	if layout == (Layout{}) {
		layout = DefaultLayout
	}
	return &Memory{regs: make(map[uint32]uint32), layout: layout}
}

// OnWrite installs a hook run after every plain register write.
// The hook runs without the register lock held.
func (m *Memory) OnWrite(fn func(addr, v uint32)) {
	m.mu.Lock()
	m.onWrite = fn
	m.mu.Unlock()
}

func (m *Memory) Read(addr uint32) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	return m.regs[addr], nil
}

func (m *Memory) Write(addr uint32, v uint32) error {
	m.mu.Lock()
	m.writes++
	m.regs[addr] = v
	hook := m.onWrite
	m.mu.Unlock()

	if hook != nil {
		hook(addr, v)
	}
	return nil
}

func (m *Memory) ReadReason() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	return m.regs[m.layout.ReasonAddr], nil
}

func (m *Memory) AckReason(mask uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[m.layout.ReasonAddr] &^= mask
	return nil
}

func (m *Memory) EnableIRQ() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.irqOn = true
	m.regs[m.layout.IRQEnableAddr] = 1
	return nil
}

func (m *Memory) DisableIRQ() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.irqOn = false
	m.regs[m.layout.IRQEnableAddr] = 0
	return nil
}

// IRQEnabled reports the interrupt line state.
func (m *Memory) IRQEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.irqOn
}

// Raise sets reason bits as the hardware would on completion.
func (m *Memory) Raise(bits uint32) {
	m.mu.Lock()
	m.regs[m.layout.ReasonAddr] |= bits
	m.mu.Unlock()
}

// Counts returns the number of reads and writes seen so far.
func (m *Memory) Counts() (reads, writes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads, m.writes
}
