package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

type stubDriver struct{ platform string }

func (d *stubDriver) Initialize(context.Context) bool    { return true }
func (d *stubDriver) Capabilities() Capability           { return CapScan }
func (d *stubDriver) Platform() string                   { return d.platform }
func (d *stubDriver) CurrentInterface() string           { return "" }
func (d *stubDriver) Cleanup(context.Context)            {}
func (d *stubDriver) Interfaces(context.Context) []wifi.InterfaceInfo {
	return nil
}
func (d *stubDriver) ScanNetworks(context.Context, string, time.Duration) []wifi.NetworkInfo {
	return nil
}
func (d *stubDriver) CurrentConnection(context.Context) *wifi.NetworkInfo {
	return nil
}
func (d *stubDriver) EnableMonitorMode(context.Context, string) OpResult {
	return Unsupported("monitor mode", d.platform)
}
func (d *stubDriver) DisableMonitorMode(context.Context, string) OpResult {
	return Unsupported("monitor mode", d.platform)
}
func (d *stubDriver) SetChannel(context.Context, string, int) OpResult {
	return Unsupported("channel control", d.platform)
}
func (d *stubDriver) Channel(context.Context, string) (int, bool) { return 0, false }
func (d *stubDriver) SetTxPower(context.Context, string, int) OpResult {
	return Unsupported("tx power control", d.platform)
}

func TestRegistryNew(t *testing.T) {
	Register("testos", func() Driver { return &stubDriver{platform: "testos"} })

	drv, err := New("testos")
	require.NoError(t, err)
	assert.Equal(t, "testos", drv.Platform())
	assert.Contains(t, Registered(), "testos")
}

func TestRegistryUnknownPlatform(t *testing.T) {
	_, err := New("plan9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan9")
}

func TestIsSecurityDistro(t *testing.T) {
	orig := osReleasePath
	t.Cleanup(func() { osReleasePath = orig })

	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "os-release")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	osReleasePath = write(t, "PRETTY_NAME=\"Kali GNU/Linux Rolling\"\nID=kali\nID_LIKE=debian\n")
	assert.True(t, IsSecurityDistro())

	osReleasePath = write(t, "ID=ubuntu\nID_LIKE=debian\n")
	assert.False(t, IsSecurityDistro())

	osReleasePath = filepath.Join(t.TempDir(), "missing")
	assert.False(t, IsSecurityDistro())
}
