// internal/config/normalize.go
package config

const (
	DefaultMaxInstances   = 8
	DefaultMemoryCapacity = 16 << 20
	DefaultStatusInterval = 1000
	DefaultStatusTimeout  = 2000
	DefaultRegTimeout     = 1000
	DefaultTraceBatch     = 1000
	DefaultMonitorListen  = "127.0.0.1:8087"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
//
// Durations and sizes the manager defaults itself are left at zero.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Manager.MaxInstances == 0 {
		cfg.Manager.MaxInstances = DefaultMaxInstances
	}
	if cfg.Memory.Capacity == 0 {
		cfg.Memory.Capacity = DefaultMemoryCapacity
	}

	// ------------------------------------------------------------
	// REGISTER BUS
	// ------------------------------------------------------------

	r := &cfg.Registers
	if r.Bus == "" {
		r.Bus = BusMemory
	}
	if r.Bus == BusModbus {
		if r.Transport == "" {
			r.Transport = "tcp"
		}
		if r.TimeoutMs == 0 {
			r.TimeoutMs = DefaultRegTimeout
		}
		if r.Transport == "rtu" {
			if r.BaudRate == 0 {
				r.BaudRate = 115200
			}
			if r.DataBits == 0 {
				r.DataBits = 8
			}
			if r.Parity == "" {
				r.Parity = "E"
			}
			if r.StopBits == 0 {
				r.StopBits = 1
			}
		}
	}
	if r.ReasonAddr == 0 && r.AckAddr == 0 && r.IRQEnableAddr == 0 {
		r.ReasonAddr, r.AckAddr, r.IRQEnableAddr = 0x40, 0x42, 0x44
	}

	// ------------------------------------------------------------
	// CLOCKS
	// ------------------------------------------------------------

	c := &cfg.Clocks
	if len(c.Bus)+len(c.Core)+len(c.Leaf) == 0 {
		c.Bus = []string{"aclk"}
		c.Core = []string{"vce", "fio"}
		c.Leaf = []string{"hclk"}
	}
	if c.GateAddr == 0 && c.ResetAddr == 0 && c.RateBase == 0 {
		c.GateAddr, c.ResetAddr, c.RateBase = 0x100, 0x102, 0x110
	}
	if c.ResetDelayUs == 0 {
		c.ResetDelayUs = 10
	}
	if c.RestoreDelayMs == 0 {
		c.RestoreDelayMs = 1
	}
	// missing tiers fall back to the sequencer's built-in rates

	// ------------------------------------------------------------
	// STATUS BLOCK (OPT-IN)
	// ------------------------------------------------------------

	s := &cfg.Status
	if len(s.DeviceName) > 16 {
		s.DeviceName = s.DeviceName[:16]
	}
	if s.Enabled {
		if s.Transport == "" {
			s.Transport = StatusModbus
		}
		if s.IntervalMs == 0 {
			s.IntervalMs = DefaultStatusInterval
		}
		if s.TimeoutMs == 0 {
			s.TimeoutMs = DefaultStatusTimeout
		}
	}

	// ------------------------------------------------------------
	// TRACE + MONITOR
	// ------------------------------------------------------------

	if cfg.Trace.Dir == "" {
		cfg.Trace.Dir = "."
	}
	if cfg.Trace.BatchSize == 0 {
		cfg.Trace.BatchSize = DefaultTraceBatch
	}
	if cfg.Monitor.Listen == "" {
		cfg.Monitor.Listen = DefaultMonitorListen
	}
}
