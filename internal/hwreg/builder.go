package hwreg

import (
	"fmt"
	"time"

	cfg "github.com/tamzrod/vdec-manager/internal/config"
)

// Build constructs the register bus described by r.
// The returned closer releases the transport; it is a no-op for memory.
// Assumes r has passed Validate and Normalize.
func Build(r cfg.RegistersConfig) (Bus, func() error, error) {
	layout := Layout{
		ReasonAddr:    r.ReasonAddr,
		AckAddr:       r.AckAddr,
		IRQEnableAddr: r.IRQEnableAddr,
	}

	switch r.Bus {
	case cfg.BusMemory, "":
		return NewMemory(layout), func() error { return nil }, nil

	case cfg.BusModbus:
		b, err := NewModbus(ModbusConfig{
			Transport: r.Transport,
			Endpoint:  r.Endpoint,
			UnitID:    r.UnitID,
			Timeout:   time.Duration(r.TimeoutMs) * time.Millisecond,
			BaudRate:  r.BaudRate,
			DataBits:  r.DataBits,
			Parity:    r.Parity,
			StopBits:  r.StopBits,
			Layout:    layout,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	}
	return nil, nil, fmt.Errorf("hwreg: unknown bus %q", r.Bus)
}
