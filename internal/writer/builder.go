// internal/writer/builder.go
package writer

import (
	"fmt"
	"log/slog"
	"time"

	cfg "github.com/tamzrod/vdec-manager/internal/config"
	"github.com/tamzrod/vdec-manager/internal/writer/ingest"
	wmodbus "github.com/tamzrod/vdec-manager/internal/writer/modbus"
)

// BuildPlan converts the status section into a StatusPlan.
// It returns nil when status publishing is disabled.
// Assumes config has already passed validation.
func BuildPlan(s cfg.StatusConfig, instances int) *StatusPlan {
	if !s.Enabled {
		return nil
	}
	return &StatusPlan{
		Endpoint:   s.Endpoint,
		UnitID:     s.UnitID,
		BaseSlot:   s.BaseSlot,
		CoilBase:   s.CoilBase,
		Instances:  instances,
		DeviceName: s.DeviceName,
	}
}

// BuildEndpointClient creates the client for the configured transport.
func BuildEndpointClient(s cfg.StatusConfig) (EndpointClient, func() error, error) {
	timeout := time.Duration(s.TimeoutMs) * time.Millisecond

	switch s.Transport {
	case cfg.StatusModbus, "":
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{Endpoint: s.Endpoint, Timeout: timeout})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	case cfg.StatusIngest:
		c, err := ingest.NewEndpointClient(ingest.Config{Endpoint: s.Endpoint, Timeout: timeout})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	}
	return nil, nil, fmt.Errorf("writer: unknown status transport %q", s.Transport)
}

// Build wires the whole status path for src. It returns a nil Publisher
// when status publishing is disabled.
func Build(s cfg.StatusConfig, instances int, src Source, log *slog.Logger) (*Publisher, func() error, error) {
	plan := BuildPlan(s, instances)
	if plan == nil {
		return nil, func() error { return nil }, nil
	}

	cli, closeFn, err := BuildEndpointClient(s)
	if err != nil {
		return nil, nil, err
	}

	sw, _ := NewDeviceStatusWriter(plan, cli)
	p, err := NewPublisher(src, sw, time.Duration(s.IntervalMs)*time.Millisecond, log)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return p, closeFn, nil
}
