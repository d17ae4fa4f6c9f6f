package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
manager:
  max_instances: 4
  completion_budget_ms: 250
registers:
  bus: modbus
  transport: tcp
  endpoint: 10.0.0.5:502
  unit_id: 3
  poll_interval_ms: 2
clocks:
  bus: [aclk]
  core: [vce]
  leaf: [hclk]
  tiers:
    fhd: {bus: 400000000, core: 400000000, leaf: 200000000}
status:
  enabled: true
  endpoint: 10.0.0.9:502
  base_slot: 1
  device_name: VDEC-A
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeFile(t, "vdec.yaml", sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Manager.MaxInstances)
	assert.Equal(t, 250, cfg.Manager.CompletionBudgetMs)
	assert.Equal(t, BusModbus, cfg.Registers.Bus)
	assert.Equal(t, uint8(3), cfg.Registers.UnitID)
	assert.Equal(t, uint64(400000000), cfg.Clocks.Tiers["fhd"].Core)
	assert.True(t, cfg.Status.Enabled)
	assert.Nil(t, cfg.Status.CoilBase)
	require.NoError(t, Validate(cfg))
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeFile(t, "bad.yaml", "manager:\n  max_instancez: 4\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestApplyEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "VDEC_DEVICE_NAME=FROM-FILE\nVDEC_TRACE_DIR=/var/trace\nVDEC_MAX_INSTANCES=6\n")
	t.Setenv(EnvDeviceName, "FROM-ENV")

	cfg := &Config{}
	require.NoError(t, ApplyEnv(cfg, envFile, filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, "FROM-ENV", cfg.Status.DeviceName, "process env wins")
	assert.Equal(t, "/var/trace", cfg.Trace.Dir)
	assert.Equal(t, 6, cfg.Manager.MaxInstances)
}

func TestApplyEnvBadNumber(t *testing.T) {
	t.Setenv(EnvMaxInstances, "many")
	assert.Error(t, ApplyEnv(&Config{}))
}
