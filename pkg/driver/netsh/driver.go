// Package netsh implements the Windows platform driver on top of the
// `netsh wlan` tool family. The capability set is fixed to scanning: the
// netsh surface exposes no monitor mode, injection, or channel control.
package netsh

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/driver"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

const (
	cmdTimeout         = 10 * time.Second
	defaultScanTimeout = 30 * time.Second
)

// Driver talks to the Windows wireless stack through netsh.
type Driver struct {
	mu     sync.Mutex
	runner driver.CommandRunner
	log    zerolog.Logger

	hasNetsh bool
	cache    []wifi.InterfaceInfo
	current  string
}

// Option configures a Driver.
type Option func(*Driver)

// WithRunner substitutes the external tool runner.
func WithRunner(r driver.CommandRunner) Option {
	return func(d *Driver) { d.runner = r }
}

// New returns an uninitialized Windows driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		runner: driver.NewExecRunner(),
		log:    log.With().Str("component", "driver.windows").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func init() {
	driver.Register("windows", func() driver.Driver { return New() })
}

func (d *Driver) Platform() string { return "windows" }

// Initialize probes for netsh. Scanning is the only capability this
// platform offers regardless of tooling.
func (d *Driver) Initialize(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.hasNetsh = d.runner.Available("netsh")
	d.log.Info().Bool("netsh", d.hasNetsh).Msg("Windows wireless driver initialized")
	return d.hasNetsh
}

func (d *Driver) Capabilities() driver.Capability { return driver.CapScan }

func (d *Driver) CurrentInterface() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Interfaces enumerates wireless interfaces via
// `netsh wlan show interfaces`.
func (d *Driver) Interfaces(ctx context.Context) []wifi.InterfaceInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.interfacesLocked(ctx)
}

func (d *Driver) interfacesLocked(ctx context.Context) []wifi.InterfaceInfo {
	out, err := d.runner.Run(ctx, cmdTimeout, "netsh", "wlan", "show", "interfaces")
	if err != nil {
		d.log.Warn().Err(err).Msg("Interface enumeration produced no output")
		return nil
	}

	records := parseShowInterfaces(out)
	result := make([]wifi.InterfaceInfo, 0, len(records))
	for _, rec := range records {
		result = append(result, wifi.InterfaceInfo{
			Name:      rec.Name,
			MAC:       rec.MAC,
			Driver:    rec.Description,
			Mode:      wifi.ModeManaged,
			Channel:   rec.Channel,
			Frequency: wifi.FrequencyFromChannel(rec.Channel),
			IsUp:      rec.State == "connected",
		})
	}

	d.cache = result
	if d.current == "" && len(result) > 0 {
		d.current = result[0].Name
	}
	return result
}

// ScanNetworks parses `netsh wlan show networks mode=bssid`. Signal comes
// back as a percentage and is converted to approximate dBm.
func (d *Driver) ScanNetworks(ctx context.Context, iface string, timeout time.Duration) []wifi.NetworkInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timeout <= 0 {
		timeout = defaultScanTimeout
	}

	args := []string{"wlan", "show", "networks", "mode=bssid"}
	if iface == "" {
		iface = d.current
	}
	if iface != "" {
		args = append(args, "interface="+iface)
	}

	out, err := d.runner.Run(ctx, timeout, "netsh", args...)
	if err != nil {
		d.log.Warn().Err(err).Msg("Scan produced no output")
		return nil
	}

	nets := parseShowNetworks(out)
	now := time.Now()
	for i := range nets {
		nets[i].FirstSeen = now
		nets[i].LastSeen = now
	}

	d.log.Info().Str("iface", iface).Int("networks", len(nets)).Msg("Scan pass completed")
	return nets
}

// CurrentConnection reuses the interface listing, filtering to the record
// whose state is "connected".
func (d *Driver) CurrentConnection(ctx context.Context) *wifi.NetworkInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	out, err := d.runner.Run(ctx, cmdTimeout, "netsh", "wlan", "show", "interfaces")
	if err != nil {
		return nil
	}

	for _, rec := range parseShowInterfaces(out) {
		if rec.State != "connected" || rec.SSID == "" {
			continue
		}
		conn := &wifi.NetworkInfo{
			SSID:       rec.SSID,
			BSSID:      rec.BSSID,
			Channel:    rec.Channel,
			Frequency:  wifi.FrequencyFromChannel(rec.Channel),
			Security:   rec.Auth,
			Encryption: rec.Cipher,
			Signal:     defaultSignalDBm,
		}
		if conn.Security == "" {
			conn.Security = securityUnknown
		}
		if rec.hasSignal {
			conn.Signal = wifi.PercentToDBm(rec.SignalPct)
		}
		return conn
	}
	return nil
}

func (d *Driver) EnableMonitorMode(ctx context.Context, iface string) driver.OpResult {
	return driver.Unsupported("monitor mode", "windows")
}

func (d *Driver) DisableMonitorMode(ctx context.Context, iface string) driver.OpResult {
	return driver.Unsupported("monitor mode", "windows")
}

func (d *Driver) SetChannel(ctx context.Context, iface string, channel int) driver.OpResult {
	return driver.Unsupported("channel control", "windows")
}

func (d *Driver) Channel(ctx context.Context, iface string) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if iface == "" {
		iface = d.current
	}
	for _, info := range d.interfacesLocked(ctx) {
		if info.Name == iface && info.Channel > 0 {
			return info.Channel, true
		}
	}
	return 0, false
}

func (d *Driver) SetTxPower(ctx context.Context, iface string, dbm int) driver.OpResult {
	return driver.Unsupported("tx power control", "windows")
}

// Cleanup drops driver state. There is no monitor mode to revert on this
// platform.
func (d *Driver) Cleanup(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache = nil
	d.current = ""
}

// Connect associates using a saved profile. This is a Windows-only
// convenience outside the shared driver contract.
func (d *Driver) Connect(ctx context.Context, profile, ssid string) driver.OpResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	args := []string{"wlan", "connect", "name=" + profile}
	if ssid != "" {
		args = append(args, "ssid="+ssid)
	}
	if _, err := d.runner.Run(ctx, cmdTimeout, "netsh", args...); err != nil {
		return driver.Fail("could not connect to profile %s: %v", profile, err)
	}
	return driver.Ok()
}

// Disconnect drops the current association.
func (d *Driver) Disconnect(ctx context.Context) driver.OpResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.runner.Run(ctx, cmdTimeout, "netsh", "wlan", "disconnect"); err != nil {
		return driver.Fail("could not disconnect: %v", err)
	}
	return driver.Ok()
}

// SavedProfiles lists the saved wireless profiles on the machine.
func (d *Driver) SavedProfiles(ctx context.Context) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out, err := d.runner.Run(ctx, cmdTimeout, "netsh", "wlan", "show", "profiles")
	if err != nil {
		return nil
	}
	return parseShowProfiles(out)
}
