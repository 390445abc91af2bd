package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nodelet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultAPIAddr, cfg.APIAddr)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, 10*time.Second, cfg.KillGracePeriod())
	assert.Equal(t, 5*time.Second, cfg.HealthInterval())
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
node_ip: 10.1.2.3
api_addr: ":7000"
kill_grace_seconds: 3
worker_command: ["/usr/bin/python3", "-m", "runtime.worker"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.1.2.3", cfg.NodeIP)
	assert.Equal(t, ":7000", cfg.APIAddr)
	assert.Equal(t, 3*time.Second, cfg.KillGracePeriod())
	assert.Equal(t, []string{"/usr/bin/python3", "-m", "runtime.worker"}, cfg.WorkerCommand)

	// Unset fields fall back to defaults.
	assert.Equal(t, DefaultWorkerPortMin, cfg.WorkerPortMin)
	assert.Equal(t, DefaultWorkerPortMax, cfg.WorkerPortMax)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "worker_port_min: [not a number")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "inverted port range",
			mutate:  func(c *Config) { c.WorkerPortMin = 2000; c.WorkerPortMax = 1000 },
			wantErr: "inverted",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.WorkerPortMax = 70000 },
			wantErr: "outside",
		},
		{
			name:    "negative grace",
			mutate:  func(c *Config) { c.KillGraceSeconds = -1 },
			wantErr: "negative",
		},
		{
			name:    "zero health interval",
			mutate:  func(c *Config) { c.HealthSeconds = 0 },
			wantErr: "positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestZeroGraceIsAllowed(t *testing.T) {
	path := writeConfig(t, "kill_grace_seconds: 0\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	// Zero in the file is indistinguishable from unset, so the default wins.
	assert.Equal(t, DefaultKillGraceSeconds, cfg.KillGraceSeconds)

	cfg.KillGraceSeconds = 0
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, time.Duration(0), cfg.KillGracePeriod())
}
