// internal/config/config.go
package config

type Config struct {
	Manager   ManagerConfig   `yaml:"manager"`
	Memory    MemoryConfig    `yaml:"memory"`
	Registers RegistersConfig `yaml:"registers"`
	Clocks    ClocksConfig    `yaml:"clocks"`
	Status    StatusConfig    `yaml:"status"`
	Trace     TraceConfig     `yaml:"trace"`
	Monitor   MonitorConfig   `yaml:"monitor"`
}

// ---- MANAGER ----

type ManagerConfig struct {
	MaxInstances       int `yaml:"max_instances"`
	IdleWaitMs         int `yaml:"idle_wait_ms"`
	CompletionSliceMs  int `yaml:"completion_slice_ms"`
	CompletionBudgetMs int `yaml:"completion_budget_ms"`
	ForceCloseBudgetMs int `yaml:"force_close_budget_ms"`
	WorkBufferSize     int `yaml:"work_buffer_size"`
}

// ---- BUFFER MEMORY ----

type MemoryConfig struct {
	Capacity      int    `yaml:"capacity"`
	InstanceQuota int    `yaml:"instance_quota"`
	Base          uint64 `yaml:"base"`
}

// ---- REGISTER BUS ----

const (
	BusModbus = "modbus"
	BusMemory = "memory" // in-process, drives the simulated core
)

type RegistersConfig struct {
	Bus string `yaml:"bus"`

	// modbus only
	Transport string `yaml:"transport"` // tcp | rtu
	Endpoint  string `yaml:"endpoint"`  // host:port or serial device
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
	BaudRate  int    `yaml:"baud_rate"`
	DataBits  int    `yaml:"data_bits"`
	Parity    string `yaml:"parity"`
	StopBits  int    `yaml:"stop_bits"`

	ReasonAddr    uint32 `yaml:"reason_addr"`
	AckAddr       uint32 `yaml:"ack_addr"`
	IRQEnableAddr uint32 `yaml:"irq_enable_addr"`

	// Reason register poll feeding completions; 0 disables.
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

// ---- CLOCKS ----

type ClocksConfig struct {
	Bus  []string `yaml:"bus"`
	Core []string `yaml:"core"`
	Leaf []string `yaml:"leaf"`

	GateAddr  uint32 `yaml:"gate_addr"`
	ResetAddr uint32 `yaml:"reset_addr"`
	RateBase  uint32 `yaml:"rate_base"`

	ResetDelayUs   int `yaml:"reset_delay_us"`
	RestoreDelayMs int `yaml:"restore_delay_ms"`

	Tiers map[string]RatesConfig `yaml:"tiers"` // uhd | fhd | hd | sd
}

// RatesConfig is one tier's rate triple in Hz.
type RatesConfig struct {
	Bus  uint64 `yaml:"bus"`
	Core uint64 `yaml:"core"`
	Leaf uint64 `yaml:"leaf"`
}

// ---- STATUS BLOCK ----

const (
	StatusModbus = "modbus"
	StatusIngest = "ingest"
)

type StatusConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Transport string `yaml:"transport"` // modbus | ingest
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`

	BaseSlot   uint16  `yaml:"base_slot"`
	CoilBase   *uint16 `yaml:"coil_base"` // per-instance open flags (optional)
	DeviceName string  `yaml:"device_name"`
	IntervalMs int     `yaml:"interval_ms"`
}

// ---- TRACE ----

type TraceConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Dir       string `yaml:"dir"`
	BatchSize int    `yaml:"batch_size"`
}

// ---- MONITOR ----

type MonitorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}
