// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
)

// MaxInstances bounds manager.max_instances; the status block carries the
// open instance set as a 32-bit bitmap.
const MaxInstances = 32

// statusBlockSlots mirrors status.SlotsPerBlock for address range checks.
const statusBlockSlots = 24

var tierNames = map[string]bool{"uhd": true, "fhd": true, "hd": true, "sd": true}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	if err := validateManager(cfg.Manager); err != nil {
		return err
	}
	if err := validateMemory(cfg.Memory, cfg.Manager); err != nil {
		return err
	}
	if err := validateRegisters(cfg.Registers); err != nil {
		return err
	}
	if err := validateClocks(cfg.Clocks); err != nil {
		return err
	}
	if err := validateStatus(cfg.Status, cfg.Manager); err != nil {
		return err
	}

	if cfg.Trace.BatchSize < 0 {
		return fmt.Errorf("trace: batch_size must be >= 0, got %d", cfg.Trace.BatchSize)
	}
	return nil
}

func validateManager(m ManagerConfig) error {
	if m.MaxInstances < 0 || m.MaxInstances > MaxInstances {
		return fmt.Errorf("manager: max_instances must be 0..%d, got %d", MaxInstances, m.MaxInstances)
	}

	durations := []struct {
		name string
		v    int
	}{
		{"idle_wait_ms", m.IdleWaitMs},
		{"completion_slice_ms", m.CompletionSliceMs},
		{"completion_budget_ms", m.CompletionBudgetMs},
		{"force_close_budget_ms", m.ForceCloseBudgetMs},
	}
	for _, d := range durations {
		if d.v < 0 {
			return fmt.Errorf("manager: %s must be >= 0, got %d", d.name, d.v)
		}
	}

	if m.CompletionSliceMs > 0 && m.CompletionBudgetMs > 0 && m.CompletionSliceMs > m.CompletionBudgetMs {
		return fmt.Errorf(
			"manager: completion_slice_ms (%d) exceeds completion_budget_ms (%d)",
			m.CompletionSliceMs,
			m.CompletionBudgetMs,
		)
	}
	if m.WorkBufferSize < 0 {
		return fmt.Errorf("manager: work_buffer_size must be >= 0, got %d", m.WorkBufferSize)
	}
	return nil
}

func validateMemory(mem MemoryConfig, m ManagerConfig) error {
	if mem.Capacity < 0 || mem.InstanceQuota < 0 {
		return errors.New("memory: capacity and instance_quota must be >= 0")
	}
	if mem.Capacity > 0 && mem.InstanceQuota > mem.Capacity {
		return fmt.Errorf(
			"memory: instance_quota (%d) exceeds capacity (%d)",
			mem.InstanceQuota,
			mem.Capacity,
		)
	}

	quota := mem.InstanceQuota
	if quota == 0 {
		quota = mem.Capacity
	}
	if quota > 0 && m.WorkBufferSize > quota {
		return fmt.Errorf(
			"memory: work_buffer_size (%d) does not fit the instance quota (%d)",
			m.WorkBufferSize,
			quota,
		)
	}
	return nil
}

func validateRegisters(r RegistersConfig) error {
	switch r.Bus {
	case "", BusMemory:
	case BusModbus:
		if r.Endpoint == "" {
			return errors.New("registers: endpoint required for modbus bus")
		}
		switch r.Transport {
		case "", "tcp", "rtu":
		default:
			return fmt.Errorf("registers: unknown transport %q", r.Transport)
		}
		switch r.Parity {
		case "", "N", "E", "O":
		default:
			return fmt.Errorf("registers: parity must be N, E or O, got %q", r.Parity)
		}
	default:
		return fmt.Errorf("registers: unknown bus %q", r.Bus)
	}

	if r.TimeoutMs < 0 || r.PollIntervalMs < 0 {
		return errors.New("registers: timeout_ms and poll_interval_ms must be >= 0")
	}

	// register file addresses are 32-bit values spanning two holding registers
	addrs := map[string]uint32{
		"reason_addr":     r.ReasonAddr,
		"ack_addr":        r.AckAddr,
		"irq_enable_addr": r.IRQEnableAddr,
	}
	seen := make(map[uint32]string)
	for name, a := range addrs {
		if a == 0 {
			continue
		}
		if a > 0xFFFE {
			return fmt.Errorf("registers: %s 0x%X out of range", name, a)
		}
		if prev, ok := seen[a]; ok {
			return fmt.Errorf("registers: %s and %s share address 0x%X", prev, name, a)
		}
		seen[a] = name
	}
	return nil
}

func validateClocks(c ClocksConfig) error {
	seen := make(map[string]bool)
	layers := [][]string{c.Bus, c.Core, c.Leaf}
	total := 0
	for _, layer := range layers {
		for _, name := range layer {
			if name == "" {
				return errors.New("clocks: empty clock name")
			}
			if seen[name] {
				return fmt.Errorf("clocks: clock %q listed twice", name)
			}
			seen[name] = true
			total++
		}
	}
	if total > 32 {
		return fmt.Errorf("clocks: at most 32 clocks, got %d", total)
	}

	if c.ResetDelayUs < 0 || c.RestoreDelayMs < 0 {
		return errors.New("clocks: reset_delay_us and restore_delay_ms must be >= 0")
	}

	for name, r := range c.Tiers {
		if !tierNames[name] {
			return fmt.Errorf("clocks: unknown tier %q (want uhd, fhd, hd, sd)", name)
		}
		if r.Bus == 0 || r.Core == 0 || r.Leaf == 0 {
			return fmt.Errorf("clocks: tier %q needs bus, core and leaf rates", name)
		}
	}
	return nil
}

func validateStatus(s StatusConfig, m ManagerConfig) error {
	// device_name sanity (ASCII only)
	for i := 0; i < len(s.DeviceName); i++ {
		if s.DeviceName[i] > 0x7F {
			return errors.New("status: device_name must contain ASCII characters only")
		}
	}

	// status is opt-in
	if !s.Enabled {
		return nil
	}

	if s.Endpoint == "" {
		return errors.New("status: endpoint required when enabled")
	}
	switch s.Transport {
	case "", StatusModbus, StatusIngest:
	default:
		return fmt.Errorf("status: unknown transport %q", s.Transport)
	}
	if s.IntervalMs < 0 || s.TimeoutMs < 0 {
		return errors.New("status: interval_ms and timeout_ms must be >= 0")
	}

	end := int(s.BaseSlot)*statusBlockSlots + statusBlockSlots
	if end > 0x10000 {
		return fmt.Errorf("status: base_slot %d puts the block past register 65535", s.BaseSlot)
	}

	if s.CoilBase != nil {
		n := m.MaxInstances
		if n == 0 {
			n = DefaultMaxInstances
		}
		if int(*s.CoilBase)+n > 0x10000 {
			return fmt.Errorf("status: coil_base %d leaves no room for %d instances", *s.CoilBase, n)
		}
	}
	return nil
}
