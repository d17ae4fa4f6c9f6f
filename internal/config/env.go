// internal/config/env.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment overrides. Process env wins over .env files.
const (
	EnvRegistersBus      = "VDEC_REGISTERS_BUS"
	EnvRegistersEndpoint = "VDEC_REGISTERS_ENDPOINT"
	EnvMaxInstances      = "VDEC_MAX_INSTANCES"
	EnvStatusEndpoint    = "VDEC_STATUS_ENDPOINT"
	EnvDeviceName        = "VDEC_DEVICE_NAME"
	EnvTraceDir          = "VDEC_TRACE_DIR"
	EnvMonitorListen     = "VDEC_MONITOR_LISTEN"
)

// ApplyEnv overlays environment values onto cfg. Missing env files are
// skipped; a malformed one is an error. Runs before Validate.
func ApplyEnv(cfg *Config, files ...string) error {
	fromFiles := make(map[string]string)
	for _, f := range files {
		m, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: env file %s: %w", f, err)
		}
		maps.Copy(fromFiles, m)
	}

	lookup := func(k string) (string, bool) {
		if v, ok := os.LookupEnv(k); ok {
			return v, true
		}
		v, ok := fromFiles[k]
		return v, ok
	}

	str := func(k string, dst *string) {
		if v, ok := lookup(k); ok && v != "" {
			*dst = v
		}
	}

	str(EnvRegistersBus, &cfg.Registers.Bus)
	str(EnvRegistersEndpoint, &cfg.Registers.Endpoint)
	str(EnvStatusEndpoint, &cfg.Status.Endpoint)
	str(EnvDeviceName, &cfg.Status.DeviceName)
	str(EnvTraceDir, &cfg.Trace.Dir)
	str(EnvMonitorListen, &cfg.Monitor.Listen)

	if v, ok := lookup(EnvMaxInstances); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvMaxInstances, v, err)
		}
		cfg.Manager.MaxInstances = n
	}
	return nil
}
