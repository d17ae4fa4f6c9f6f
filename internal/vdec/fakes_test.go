package vdec

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/vdec-manager/internal/bufalloc"
	"github.com/tamzrod/vdec-manager/internal/codec"
	"github.com/tamzrod/vdec-manager/internal/hwreg"
)

// ---- fake codec core ----

type coreCall struct {
	inst int
	op   codec.Op
}

// coreHook overrides the default behavior when handled is true.
type coreHook func(inst int, op codec.Op, caps codec.Capabilities, p1, p2 any) (res codec.Result, handled bool)

type fakeCore struct {
	mu    sync.Mutex
	next  codec.Handle
	caps  map[codec.Handle]codec.Capabilities
	owner map[codec.Handle]int
	calls []coreCall
	hook  coreHook
}

func newFakeCore() *fakeCore {
	return &fakeCore{
		next:  100,
		caps:  make(map[codec.Handle]codec.Capabilities),
		owner: make(map[codec.Handle]int),
	}
}

func (f *fakeCore) setHook(h coreHook) {
	f.mu.Lock()
	f.hook = h
	f.mu.Unlock()
}

func (f *fakeCore) Process(op codec.Op, h *codec.Handle, p1, p2 any) codec.Result {
	f.mu.Lock()
	var (
		inst int
		caps codec.Capabilities
	)
	if op == codec.OpInit {
		ip := p1.(*codec.InitParam)
		inst, caps = ip.Instance, ip.Capabilities
	} else {
		inst, caps = f.owner[*h], f.caps[*h]
	}
	f.calls = append(f.calls, coreCall{inst: inst, op: op})
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		if res, ok := hook(inst, op, caps, p1, p2); ok {
			if op == codec.OpInit && res == codec.Success {
				f.assign(h, inst, caps)
			}
			return res
		}
	}

	switch op {
	case codec.OpInit:
		f.assign(h, inst, caps)
	case codec.OpSeqHeader:
		if info, ok := p2.(*codec.SeqInfo); ok {
			info.Width, info.Height = 1920, 1080
		}
	case codec.OpDecode:
		if out, ok := p2.(*codec.DecodeOutput); ok {
			out.DisplayIndex = 0
		}
	}
	return codec.Success
}

func (f *fakeCore) assign(h *codec.Handle, inst int, caps codec.Capabilities) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	*h = f.next
	f.caps[*h] = caps
	f.owner[*h] = inst
}

func (f *fakeCore) opCalls(op codec.Op) []coreCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []coreCall
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

// ---- fake power sequencer ----

type fakePower struct {
	mu    sync.Mutex
	calls []string
}

func (p *fakePower) record(s string) {
	p.mu.Lock()
	p.calls = append(p.calls, s)
	p.mu.Unlock()
}

func (p *fakePower) EnableClock() error  { p.record("enable"); return nil }
func (p *fakePower) DisableClock() error { p.record("disable"); return nil }
func (p *fakePower) Reset() error        { p.record("reset"); return nil }
func (p *fakePower) AssertReset() error  { p.record("assert_reset"); return nil }
func (p *fakePower) ForgetResolution()   { p.record("forget") }

func (p *fakePower) Retune(w, h int) (bool, error) {
	p.record(fmt.Sprintf("retune %dx%d", w, h))
	return true, nil
}

func (p *fakePower) Restore(n int) error {
	p.record(fmt.Sprintf("restore %d", n))
	return nil
}

func (p *fakePower) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (p *fakePower) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// ---- harness ----

type harness struct {
	m    *Manager
	core *fakeCore
	pwr  *fakePower
	bus  *hwreg.Memory
	pool *bufalloc.Pool
}

const testInstances = 5

func testConfig() Config {
	return Config{
		MaxInstances:     testInstances,
		IdleWait:         10 * time.Millisecond,
		CompletionSlice:  time.Millisecond,
		CompletionBudget: 30 * time.Millisecond,
		ForceCloseBudget: 100 * time.Millisecond,
		WorkBufferSize:   1024,
		Logger:           slog.New(slog.DiscardHandler),
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, testConfig(), nil)
}

func newHarnessWith(t *testing.T, cfg Config, pwr PowerSequencer) *harness {
	t.Helper()

	pool, err := bufalloc.NewPool(bufalloc.Config{Capacity: 64 << 10, InstanceQuota: 8 << 10})
	require.NoError(t, err)

	h := &harness{
		core: newFakeCore(),
		pwr:  &fakePower{},
		bus:  hwreg.NewMemory(hwreg.Layout{}),
		pool: pool,
	}
	if pwr == nil {
		pwr = h.pwr
	}

	h.m, err = New(cfg, Deps{Core: h.core, Bus: h.bus, Power: pwr, Alloc: pool})
	require.NoError(t, err)
	h.m.Start()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = h.m.Stop(ctx)
	})
	return h
}

func (h *harness) openAll(t *testing.T, insts ...int) map[int]codec.Handle {
	t.Helper()
	require.NoError(t, h.m.Open())
	handles := make(map[int]codec.Handle)
	for _, i := range insts {
		hd, res, err := h.m.Init(context.Background(), i, nil)
		require.NoError(t, err)
		require.Equal(t, codec.Success, res, "init inst %d", i)
		require.NotZero(t, hd)
		handles[i] = hd
	}
	return handles
}

func (h *harness) decode(t *testing.T, inst int, hd codec.Handle, p *codec.DecodeParam) (codec.Result, *codec.DecodeOutput) {
	t.Helper()
	out := &codec.DecodeOutput{}
	res, err := h.m.Call(context.Background(), inst, codec.OpDecode, hd, p, out)
	require.NoError(t, err)
	return res, out
}

func openFlags(slots []SlotState) []bool {
	out := make([]bool, len(slots))
	for i, s := range slots {
		out[i] = s.Open
	}
	return out
}
