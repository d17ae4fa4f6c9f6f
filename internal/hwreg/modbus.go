package hwreg

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// ModbusConfig is the transport config of a register bus reached over Modbus.
type ModbusConfig struct {
	// Transport is "tcp" (default) or "rtu".
	Transport string
	Endpoint  string // host:port for tcp, device path for rtu
	UnitID    uint8
	Timeout   time.Duration

	// RTU only.
	BaudRate int
	DataBits int
	Parity   string
	StopBits int

	Layout Layout
}

type modbusHandler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// ModbusBus maps 32-bit device registers onto pairs of holding registers
// (high word first). Requests are serialized on one connection.
type ModbusBus struct {
	mu      sync.Mutex
	handler modbusHandler
	client  modbus.Client
	layout  Layout
	closed  bool
}

// NewModbus connects a register bus.
func NewModbus(cfg ModbusConfig) (*ModbusBus, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("hwreg modbus: endpoint required")
	}

	var h modbusHandler
	switch cfg.Transport {
	case "", "tcp":
		th := modbus.NewTCPClientHandler(cfg.Endpoint)
		th.Timeout = cfg.Timeout
		th.SlaveId = cfg.UnitID
		h = th
	case "rtu":
		rh := modbus.NewRTUClientHandler(cfg.Endpoint)
		rh.BaudRate = cfg.BaudRate
		rh.DataBits = cfg.DataBits
		rh.Parity = cfg.Parity
		rh.StopBits = cfg.StopBits
		rh.Timeout = cfg.Timeout
		rh.SlaveId = cfg.UnitID
		h = rh
	default:
		return nil, fmt.Errorf("hwreg modbus: unknown transport %q", cfg.Transport)
	}

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("hwreg modbus: connect %s: %w", cfg.Endpoint, err)
	}

	layout := cfg.Layout
	if layout == (Layout{}) {
		layout = DefaultLayout
	}

	return &ModbusBus{
		handler: h,
		client:  modbus.NewClient(h),
		layout:  layout,
	}, nil
}

// Close closes the underlying connection.
func (b *ModbusBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.handler.Close()
}

func (b *ModbusBus) Read(addr uint32) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read(addr)
}

func (b *ModbusBus) Write(addr uint32, v uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.write(addr, v)
}

func (b *ModbusBus) ReadReason() (uint32, error) {
	return b.Read(b.layout.ReasonAddr)
}

func (b *ModbusBus) AckReason(mask uint32) error {
	if mask == 0 {
		return nil
	}
	return b.Write(b.layout.AckAddr, mask)
}

func (b *ModbusBus) EnableIRQ() error {
	return b.Write(b.layout.IRQEnableAddr, 1)
}

func (b *ModbusBus) DisableIRQ() error {
	return b.Write(b.layout.IRQEnableAddr, 0)
}

// ---- internal (caller holds mu) ----

func (b *ModbusBus) read(addr uint32) (uint32, error) {
	if b.closed {
		return 0, errClosed
	}
	a, err := regAddr(addr)
	if err != nil {
		return 0, err
	}
	raw, err := b.client.ReadHoldingRegisters(a, 2)
	if err != nil {
		return 0, fmt.Errorf("hwreg modbus: read 0x%04x: %w", addr, err)
	}
	if len(raw) < 4 {
		return 0, fmt.Errorf("hwreg modbus: short read 0x%04x: %d bytes", addr, len(raw))
	}
	return joinWords(raw), nil
}

func (b *ModbusBus) write(addr uint32, v uint32) error {
	if b.closed {
		return errClosed
	}
	a, err := regAddr(addr)
	if err != nil {
		return err
	}
	if _, err := b.client.WriteMultipleRegisters(a, 2, splitWords(v)); err != nil {
		return fmt.Errorf("hwreg modbus: write 0x%04x: %w", addr, err)
	}
	return nil
}

func regAddr(addr uint32) (uint16, error) {
	// each device register occupies two holding registers
	if addr > 0xFFFE {
		return 0, fmt.Errorf("hwreg modbus: address 0x%x out of range", addr)
	}
	return uint16(addr), nil
}

// splitWords packs v as two big-endian holding registers, high word first.
func splitWords(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func joinWords(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
