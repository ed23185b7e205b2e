package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	// Bypass the global instance so tests stay isolated.
	m := NewManager()
	m.koanfInstance = koanf.New(".")
	return m
}

func TestLoadDefaults(t *testing.T) {
	m := newTestManager(t)

	err := m.Load(nil, "")
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 3*time.Second, cfg.Scan.Interval)
	assert.Equal(t, 300*time.Millisecond, cfg.Scan.ChannelHopInterval)
	assert.Equal(t, 100, cfg.Scan.MaxNetworks)
	assert.Equal(t, 30*time.Second, cfg.Scan.Timeout)
	assert.Equal(t, -100, cfg.Scan.MinSignal)
	assert.NotEmpty(t, cfg.Scan.Channels)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	m := newTestManager(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "log:\n  level: debug\nscan:\n  timeout: 10s\n  min_signal: -75\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	require.NoError(t, m.Load(nil, path))

	cfg := m.Get()
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.Scan.Timeout)
	assert.Equal(t, -75, cfg.Scan.MinSignal)
	// Untouched keys keep their defaults.
	assert.Equal(t, 100, cfg.Scan.MaxNetworks)
}

func TestLoadMissingFileIsSkipped(t *testing.T) {
	m := newTestManager(t)

	err := m.Load(nil, filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", m.Get().Log.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	m := newTestManager(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600))
	t.Setenv("WIFITESTER_LOG_LEVEL", "debug")

	require.NoError(t, m.Load(nil, path))
	assert.Equal(t, "debug", m.Get().Log.Level)
}

func TestLoadEnvMultiWordKeys(t *testing.T) {
	m := newTestManager(t)

	t.Setenv("WIFITESTER_SCAN_MIN_SIGNAL", "-50")
	t.Setenv("WIFITESTER_SCAN_MAX_NETWORKS", "7")
	t.Setenv("WIFITESTER_SCAN_CHANNEL_HOP_INTERVAL", "750ms")
	t.Setenv("WIFITESTER_LOG_NO_COLOR", "true")

	require.NoError(t, m.Load(nil, ""))

	cfg := m.Get()
	assert.Equal(t, -50, cfg.Scan.MinSignal)
	assert.Equal(t, 7, cfg.Scan.MaxNetworks)
	assert.Equal(t, 750*time.Millisecond, cfg.Scan.ChannelHopInterval)
	assert.True(t, cfg.Log.NoColor)
}

func TestLoadEnvIgnoresUnknownVariables(t *testing.T) {
	m := newTestManager(t)

	t.Setenv("WIFITESTER_WORKSPACE", "/tmp/elsewhere")
	t.Setenv("WIFITESTER_SCAN_BOGUS", "1")

	require.NoError(t, m.Load(nil, ""))
	assert.False(t, m.koanfInstance.Exists("workspace"))
	assert.False(t, m.koanfInstance.Exists("scan.bogus"))
}

func TestLoadFlagsWinOverEverything(t *testing.T) {
	m := newTestManager(t)

	t.Setenv("WIFITESTER_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Parse([]string{"--log.level=error", "--scan.timeout=5s"}))

	require.NoError(t, m.Load(flags, ""))

	cfg := m.Get()
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.Scan.Timeout)
}

func TestValidateAcceptsDefaults(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Load(nil, ""))
	assert.NoError(t, m.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero timeout", "scan:\n  timeout: 0s\n"},
		{"negative interval", "scan:\n  interval: -1s\n"},
		{"max_networks zero", "scan:\n  max_networks: 0\n"},
		{"min_signal positive", "scan:\n  min_signal: 10\n"},
		{"channel out of range", "scan:\n  channels: [1, 300]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))
			require.NoError(t, m.Load(nil, path))
			assert.Error(t, m.Validate())
		})
	}
}

func TestReloadPicksUpFileChange(t *testing.T) {
	m := newTestManager(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  timeout: 10s\n"), 0o600))
	require.NoError(t, m.Load(nil, path))
	require.Equal(t, 10*time.Second, m.Get().Scan.Timeout)

	require.NoError(t, os.WriteFile(path, []byte("scan:\n  timeout: 20s\n"), 0o600))
	require.NoError(t, m.Reload(path))
	assert.Equal(t, 20*time.Second, m.Get().Scan.Timeout)
}

func TestReloadRejectsInvalidChange(t *testing.T) {
	m := newTestManager(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  timeout: 10s\n"), 0o600))
	require.NoError(t, m.Load(nil, path))

	require.NoError(t, os.WriteFile(path, []byte("scan:\n  timeout: 0s\n"), 0o600))
	assert.Error(t, m.Reload(path))
	assert.Equal(t, 10*time.Second, m.Get().Scan.Timeout, "previous config must survive an invalid reload")
}

func TestDefaultScanChannels(t *testing.T) {
	channels := DefaultScanChannels()

	assert.Contains(t, channels, 1)
	assert.Contains(t, channels, 14)
	assert.Contains(t, channels, 36)
	assert.Contains(t, channels, 164)
	assert.NotContains(t, channels, 35)
}
