// Package bufalloc is the per-instance buffer memory collaborator.
package bufalloc

import (
	"errors"
	"fmt"
	"sync"
)

// Allocator hands out instance-owned buffer memory.
type Allocator interface {
	Init() error
	Release()

	Alloc(inst int, size int) (Block, error)
	FreeInstance(inst int) int
	FreeSize(inst int) int

	// Lookup returns the bytes backing [addr, addr+size) when they belong to inst.
	Lookup(inst int, addr uint64, size int) ([]byte, bool)
}

// Block is one allocation.
type Block struct {
	Addr uint64
	Size int
}

var (
	ErrNotReady = errors.New("bufalloc: allocator not initialized")
	ErrNoMemory = errors.New("bufalloc: out of memory")
)

// Config sizes a Pool.
type Config struct {
	Capacity      int    // total bytes
	InstanceQuota int    // per-instance bytes; 0 means Capacity
	Base          uint64 // address of the first byte
}

type block struct {
	Block
	data []byte
}

// Pool is a quota-enforcing allocator over a fixed capacity.
// Addresses are never reused within one Init/Release cycle.
type Pool struct {
	mu    sync.Mutex
	cfg   Config
	ready bool
	next  uint64
	used  int
	owned map[int][]block
}

// NewPool validates cfg and returns an uninitialized pool.
func NewPool(cfg Config) (*Pool, error) {
	if cfg.Capacity <= 0 {
		return nil, errors.New("bufalloc: capacity must be > 0")
	}
	if cfg.InstanceQuota <= 0 || cfg.InstanceQuota > cfg.Capacity {
		cfg.InstanceQuota = cfg.Capacity
	}
	if cfg.Base == 0 {
		cfg.Base = 0x1000_0000
	}
	return &Pool{cfg: cfg}, nil
}

func (p *Pool) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = true
	p.next = p.cfg.Base
	p.used = 0
	p.owned = make(map[int][]block)
	return nil
}

func (p *Pool) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = false
	p.used = 0
	p.owned = nil
}

func (p *Pool) Alloc(inst int, size int) (Block, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return Block{}, ErrNotReady
	}
	if size <= 0 {
		return Block{}, fmt.Errorf("bufalloc: invalid size %d", size)
	}
	if size > p.freeSize(inst) {
		return Block{}, fmt.Errorf("%w: inst=%d want=%d free=%d", ErrNoMemory, inst, size, p.freeSize(inst))
	}

	b := block{
		Block: Block{Addr: p.next, Size: size},
		data:  make([]byte, size),
	}
	p.next += uint64(size)
	p.used += size
	p.owned[inst] = append(p.owned[inst], b)

	return b.Block, nil
}

func (p *Pool) FreeInstance(inst int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	freed := 0
	for _, b := range p.owned[inst] {
		freed += b.Size
	}
	p.used -= freed
	delete(p.owned, inst)
	return freed
}

func (p *Pool) FreeSize(inst int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.freeSize(inst)
}

func (p *Pool) Lookup(inst int, addr uint64, size int) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, b := range p.owned[inst] {
		if addr >= b.Addr && addr+uint64(size) <= b.Addr+uint64(b.Size) {
			off := addr - b.Addr
			return b.data[off : off+uint64(size)], true
		}
	}
	return nil, false
}

// InstanceUsage reports bytes currently held by inst.
func (p *Pool) InstanceUsage(inst int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.owned[inst] {
		n += b.Size
	}
	return n
}

func (p *Pool) freeSize(inst int) int {
	if !p.ready {
		return 0
	}
	held := 0
	for _, b := range p.owned[inst] {
		held += b.Size
	}
	quota := p.cfg.InstanceQuota - held
	global := p.cfg.Capacity - p.used
	if quota < global {
		return quota
	}
	return global
}
