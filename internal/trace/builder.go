package trace

import (
	"log/slog"

	cfg "github.com/tamzrod/vdec-manager/internal/config"
)

// Build opens a Recorder for the trace section. It returns nil when tracing
// is disabled; callers must not store a nil *Recorder in a vdec.Recorder.
func Build(t cfg.TraceConfig, log *slog.Logger) (*Recorder, error) {
	if !t.Enabled {
		return nil, nil
	}
	return New(Config{Dir: t.Dir, BatchSize: t.BatchSize, Logger: log})
}
