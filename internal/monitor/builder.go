package monitor

import (
	"context"
	"log/slog"

	cfg "github.com/tamzrod/vdec-manager/internal/config"
)

// Build starts the monitor when enabled. It returns nil otherwise.
func Build(ctx context.Context, c cfg.MonitorConfig, src Source, pw PowerSource, log *slog.Logger) (*Monitor, error) {
	if !c.Enabled {
		return nil, nil
	}
	m := New(src, pw, log)
	if err := m.Start(ctx, c.Listen); err != nil {
		return nil, err
	}
	return m, nil
}
