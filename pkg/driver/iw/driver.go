// Package iw implements the Linux platform driver on top of the iw /
// iwlist / iwconfig / ip tool family, with airmon-ng assistance where the
// aircrack-ng toolchain is installed.
package iw

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/driver"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

const (
	cmdTimeout         = 10 * time.Second
	defaultScanTimeout = 30 * time.Second
)

// Old iw releases predate the scan output fields the primary parser keys
// on, so the legacy iwlist path is preferred below this version.
var minModernIW = semver.MustParse("4.0.0")

// Driver talks to the Linux wireless stack. All external tools go through
// the CommandRunner so behavior is testable against canned output.
type Driver struct {
	mu     sync.Mutex
	runner driver.CommandRunner
	log    zerolog.Logger

	securityDistro func() bool
	sysClassNet    string

	caps       driver.Capability
	iwVersion  *semver.Version
	legacyScan bool

	hasIW       bool
	hasIWList   bool
	hasIWConfig bool
	hasIP       bool
	hasAirmon   bool
	hasAireplay bool

	cache   []wifi.InterfaceInfo
	current string

	// originalMode remembers the pre-monitor mode per interface so Cleanup
	// can always revert, even when the caller never disabled monitor mode.
	originalMode map[string]wifi.InterfaceMode
	// monitorBase maps an airmon-ng renamed interface back to its base name.
	monitorBase map[string]string

	lastScan map[string]wifi.NetworkInfo
}

// Option configures a Driver.
type Option func(*Driver)

// WithRunner substitutes the external tool runner.
func WithRunner(r driver.CommandRunner) Option {
	return func(d *Driver) { d.runner = r }
}

// WithSecurityDistroCheck substitutes the security-distribution probe.
func WithSecurityDistroCheck(f func() bool) Option {
	return func(d *Driver) { d.securityDistro = f }
}

// WithSysClassNet points the sysfs fallback at a different root.
func WithSysClassNet(path string) Option {
	return func(d *Driver) { d.sysClassNet = path }
}

// New returns an uninitialized Linux driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		runner:         driver.NewExecRunner(),
		log:            log.With().Str("component", "driver.linux").Logger(),
		securityDistro: driver.IsSecurityDistro,
		sysClassNet:    "/sys/class/net",
		originalMode:   make(map[string]wifi.InterfaceMode),
		monitorBase:    make(map[string]string),
		lastScan:       make(map[string]wifi.NetworkInfo),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func init() {
	driver.Register("linux", func() driver.Driver { return New() })
}

func (d *Driver) Platform() string { return "linux" }

// Initialize probes the wireless toolchain and builds the capability set.
// A missing primary tool degrades capabilities instead of failing: the
// driver stays usable through the fallback paths.
func (d *Driver) Initialize(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.hasIW = d.runner.Available("iw")
	d.hasIWList = d.runner.Available("iwlist")
	d.hasIWConfig = d.runner.Available("iwconfig")
	d.hasIP = d.runner.Available("ip")
	d.hasAirmon = d.runner.Available("airmon-ng")
	d.hasAireplay = d.runner.Available("aireplay-ng")

	d.caps = driver.CapScan
	if d.securityDistro() {
		d.caps |= driver.CapMonitorMode | driver.CapChannelHop
	}
	if d.hasAirmon && d.hasAireplay {
		d.caps |= driver.CapPacketInjection | driver.CapDeauth
	}

	if d.hasIW {
		if out, err := d.runner.Run(ctx, cmdTimeout, "iw", "--version"); err == nil {
			if v, verr := semver.NewVersion(parseIWVersion(out)); verr == nil {
				d.iwVersion = v
				d.legacyScan = v.LessThan(minModernIW)
			}
		}
	}

	d.log.Info().
		Bool("iw", d.hasIW).
		Bool("iwlist", d.hasIWList).
		Bool("airmon", d.hasAirmon).
		Str("capabilities", d.caps.String()).
		Msg("Linux wireless driver initialized")

	return d.hasIW
}

func (d *Driver) Capabilities() driver.Capability {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.caps
}

func (d *Driver) CurrentInterface() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Interfaces enumerates wireless interfaces via `iw dev`, falling back to
// sysfs introspection when iw is unavailable. The internal cache and the
// current-interface selection are refreshed as a side effect.
func (d *Driver) Interfaces(ctx context.Context) []wifi.InterfaceInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.interfacesLocked(ctx)
}

func (d *Driver) interfacesLocked(ctx context.Context) []wifi.InterfaceInfo {
	var parsed []wifi.InterfaceInfo

	if d.hasIW {
		if out, err := d.runner.Run(ctx, cmdTimeout, "iw", "dev"); err == nil {
			parsed = parseIWDev(out)
		}
	}
	if parsed == nil {
		parsed = d.sysfsInterfaces()
	}

	for i := range parsed {
		parsed[i].IsUp = d.interfaceUp(parsed[i].Name)
		parsed[i].SupportsMonitor = d.caps.Has(driver.CapMonitorMode)
		parsed[i].SupportsInjection = d.caps.Has(driver.CapPacketInjection)
	}

	d.cache = parsed
	if d.current == "" && len(parsed) > 0 {
		d.current = parsed[0].Name
	}
	return parsed
}

// interfaceUp reads the sysfs operstate for the interface. "up" and the
// transient "unknown" (common on wireless right after link up) count as
// up; an unreadable operstate defaults to up rather than hiding the
// interface behind a stale flag.
func (d *Driver) interfaceUp(name string) bool {
	data, err := os.ReadFile(filepath.Join(d.sysClassNet, name, "operstate"))
	if err != nil {
		return true
	}
	state := strings.TrimSpace(string(data))
	return state == "up" || state == "unknown"
}

// sysfsInterfaces walks /sys/class/net for entries with a wireless subdir.
// This path cannot query live interface state, so mode is fixed at managed.
func (d *Driver) sysfsInterfaces() []wifi.InterfaceInfo {
	entries, err := os.ReadDir(d.sysClassNet)
	if err != nil {
		return nil
	}

	var result []wifi.InterfaceInfo
	for _, e := range entries {
		name := e.Name()
		if _, err := os.Stat(filepath.Join(d.sysClassNet, name, "wireless")); err != nil {
			continue
		}
		iface := wifi.InterfaceInfo{Name: name, Mode: wifi.ModeManaged}
		if data, err := os.ReadFile(filepath.Join(d.sysClassNet, name, "address")); err == nil {
			iface.MAC = wifi.NormalizeBSSID(string(data))
		}
		result = append(result, iface)
	}
	return result
}

// ScanNetworks runs one scan pass. The modern iw grammar is primary and
// iwlist is the fallback; the order flips on old iw versions. A command
// failure on both paths yields an empty result, indistinguishable from a
// scan that found nothing.
func (d *Driver) ScanNetworks(ctx context.Context, iface string, timeout time.Duration) []wifi.NetworkInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	iface = d.resolveLocked(ctx, iface)
	if iface == "" {
		d.log.Warn().Msg("Scan requested with no wireless interface available")
		return nil
	}
	if timeout <= 0 {
		timeout = defaultScanTimeout
	}

	primary, fallback := d.scanModern, d.scanLegacy
	if d.legacyScan {
		primary, fallback = fallback, primary
	}

	nets, err := primary(ctx, iface, timeout)
	if err != nil {
		d.log.Debug().Err(err).Str("iface", iface).Msg("Primary scan path failed, trying fallback")
		nets, err = fallback(ctx, iface, timeout)
	}
	if err != nil {
		d.log.Warn().Err(err).Str("iface", iface).Msg("Scan produced no output")
		return nil
	}

	now := time.Now()
	for i := range nets {
		nets[i].FirstSeen = now
		nets[i].LastSeen = now
		d.lastScan[nets[i].BSSID] = nets[i]
	}

	d.log.Info().Str("iface", iface).Int("networks", len(nets)).Msg("Scan pass completed")
	return nets
}

func (d *Driver) scanModern(ctx context.Context, iface string, timeout time.Duration) ([]wifi.NetworkInfo, error) {
	out, err := d.runner.Run(ctx, timeout, "iw", "dev", iface, "scan")
	if err != nil {
		return nil, err
	}
	return parseIWScan(out), nil
}

func (d *Driver) scanLegacy(ctx context.Context, iface string, timeout time.Duration) ([]wifi.NetworkInfo, error) {
	out, err := d.runner.Run(ctx, timeout, "iwlist", iface, "scan")
	if err != nil {
		return nil, err
	}
	return parseIWListScan(out), nil
}

// CurrentConnection reflects live association state via iwconfig,
// independent of scan results. Fields iwconfig does not report are filled
// from the last scan pass when the BSSID matches.
func (d *Driver) CurrentConnection(ctx context.Context) *wifi.NetworkInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	iface := d.resolveLocked(ctx, "")
	if iface == "" || !d.hasIWConfig {
		return nil
	}

	out, err := d.runner.Run(ctx, cmdTimeout, "iwconfig", iface)
	if err != nil {
		return nil
	}
	conn := parseIWConfig(out)
	if conn == nil {
		return nil
	}

	if cached, ok := d.lastScan[conn.BSSID]; ok {
		conn.Security = cached.Security
		conn.Encryption = cached.Encryption
		conn.WPS = cached.WPS
		if conn.Channel == 0 {
			conn.Channel = cached.Channel
		}
	}
	return conn
}

// EnableMonitorMode switches iface into monitor mode, preferring airmon-ng
// (which renames the interface) and falling back to the manual
// link-down / set-type / link-up sequence that keeps the name.
func (d *Driver) EnableMonitorMode(ctx context.Context, iface string) driver.OpResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.caps.Has(driver.CapMonitorMode) {
		return driver.Unsupported("monitor mode", "this system")
	}
	iface = d.resolveLocked(ctx, iface)
	if iface == "" {
		return driver.Fail("no wireless interface selected")
	}

	idx := d.cacheIndex(iface)
	if idx >= 0 && d.cache[idx].Mode == wifi.ModeMonitor {
		return driver.Ok()
	}
	if _, seen := d.originalMode[iface]; !seen {
		mode := wifi.ModeManaged
		if idx >= 0 {
			mode = d.cache[idx].Mode
		}
		d.originalMode[iface] = mode
	}

	if d.hasAirmon {
		if _, err := d.runner.Run(ctx, cmdTimeout, "airmon-ng", "start", iface); err == nil {
			renamed := iface + "mon"
			d.monitorBase[renamed] = iface
			d.renameLocked(iface, renamed, wifi.ModeMonitor)
			d.current = renamed
			d.log.Info().Str("iface", renamed).Msg("Monitor mode enabled via airmon-ng")
			return driver.Ok()
		}
		d.log.Debug().Str("iface", iface).Msg("airmon-ng start failed, using manual mode switch")
	}

	if res := d.setTypeLocked(ctx, iface, "monitor"); !res.OK {
		delete(d.originalMode, iface)
		return res
	}
	d.setModeLocked(iface, wifi.ModeMonitor)
	d.current = iface
	d.log.Info().Str("iface", iface).Msg("Monitor mode enabled")
	return driver.Ok()
}

// DisableMonitorMode reverts iface to managed mode and restores the
// pre-monitor interface name as current.
func (d *Driver) DisableMonitorMode(ctx context.Context, iface string) driver.OpResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disableMonitorLocked(ctx, iface)
}

func (d *Driver) disableMonitorLocked(ctx context.Context, iface string) driver.OpResult {
	if !d.caps.Has(driver.CapMonitorMode) {
		return driver.Unsupported("monitor mode", "this system")
	}
	iface = d.resolveLocked(ctx, iface)
	if iface == "" {
		return driver.Fail("no wireless interface selected")
	}

	base, renamed := d.monitorBase[iface]
	if d.hasAirmon && (renamed || strings.HasSuffix(iface, "mon")) {
		if _, err := d.runner.Run(ctx, cmdTimeout, "airmon-ng", "stop", iface); err == nil {
			if !renamed {
				base = strings.TrimSuffix(iface, "mon")
			}
			d.renameLocked(iface, base, wifi.ModeManaged)
			d.current = base
			delete(d.monitorBase, iface)
			delete(d.originalMode, base)
			d.log.Info().Str("iface", base).Msg("Monitor mode disabled via airmon-ng")
			return driver.Ok()
		}
		d.log.Debug().Str("iface", iface).Msg("airmon-ng stop failed, using manual mode switch")
	}

	if res := d.setTypeLocked(ctx, iface, "managed"); !res.OK {
		return res
	}
	d.setModeLocked(iface, wifi.ModeManaged)
	d.current = iface
	delete(d.originalMode, iface)
	d.log.Info().Str("iface", iface).Msg("Monitor mode disabled")
	return driver.Ok()
}

// setTypeLocked performs the manual interface type switch: link down, set
// type, link up. On a mid-sequence failure the link is brought back up so
// the interface is not left dead.
func (d *Driver) setTypeLocked(ctx context.Context, iface, typ string) driver.OpResult {
	if !d.hasIP || !d.hasIW {
		return driver.Fail("ip and iw are required to switch interface type")
	}

	if _, err := d.runner.Run(ctx, cmdTimeout, "ip", "link", "set", iface, "down"); err != nil {
		return driver.Fail("could not bring %s down: %v", iface, err)
	}
	if _, err := d.runner.Run(ctx, cmdTimeout, "iw", "dev", iface, "set", "type", typ); err != nil {
		d.runner.Run(ctx, cmdTimeout, "ip", "link", "set", iface, "up")
		return driver.Fail("could not set %s type to %s: %v", iface, typ, err)
	}
	if _, err := d.runner.Run(ctx, cmdTimeout, "ip", "link", "set", iface, "up"); err != nil {
		return driver.Fail("could not bring %s up: %v", iface, err)
	}
	return driver.Ok()
}

// SetChannel tunes iface to the given channel. Channel control is part of
// the channel-hop capability.
func (d *Driver) SetChannel(ctx context.Context, iface string, channel int) driver.OpResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.caps.Has(driver.CapChannelHop) {
		return driver.Unsupported("channel control", "this system")
	}
	iface = d.resolveLocked(ctx, iface)
	if iface == "" {
		return driver.Fail("no wireless interface selected")
	}

	if _, err := d.runner.Run(ctx, cmdTimeout, "iw", "dev", iface, "set", "channel", strconv.Itoa(channel)); err != nil {
		return driver.Fail("could not set channel %d on %s: %v", channel, iface, err)
	}
	if idx := d.cacheIndex(iface); idx >= 0 {
		d.cache[idx].Channel = channel
		d.cache[idx].Frequency = wifi.FrequencyFromChannel(channel)
	}
	return driver.Ok()
}

// Channel reports the current channel of iface from a fresh enumeration.
func (d *Driver) Channel(ctx context.Context, iface string) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	iface = d.resolveLocked(ctx, iface)
	if iface == "" {
		return 0, false
	}
	for _, info := range d.interfacesLocked(ctx) {
		if info.Name == iface && info.Channel > 0 {
			return info.Channel, true
		}
	}
	return 0, false
}

// SetTxPower sets the transmit power of iface. iw expects mBm, so dBm is
// multiplied by 100.
func (d *Driver) SetTxPower(ctx context.Context, iface string, dbm int) driver.OpResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.hasIW {
		return driver.Fail("iw is required to set tx power")
	}
	iface = d.resolveLocked(ctx, iface)
	if iface == "" {
		return driver.Fail("no wireless interface selected")
	}

	mbm := strconv.Itoa(dbm * 100)
	if _, err := d.runner.Run(ctx, cmdTimeout, "iw", "dev", iface, "set", "txpower", "fixed", mbm); err != nil {
		return driver.Fail("could not set tx power on %s: %v", iface, err)
	}
	if idx := d.cacheIndex(iface); idx >= 0 {
		d.cache[idx].TxPower = dbm
	}
	return driver.Ok()
}

// Cleanup reverts any interface still in monitor mode so the OS network
// stack is left usable, then drops driver state.
func (d *Driver) Cleanup(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.cache {
		if d.cache[i].Mode != wifi.ModeMonitor {
			continue
		}
		name := d.cache[i].Name
		if res := d.disableMonitorLocked(ctx, name); !res.OK {
			d.log.Warn().Str("iface", name).Str("reason", res.Reason).Msg("Could not revert monitor mode during cleanup")
		}
	}

	d.originalMode = make(map[string]wifi.InterfaceMode)
	d.monitorBase = make(map[string]string)
	d.lastScan = make(map[string]wifi.NetworkInfo)
	d.current = ""
	d.cache = nil
}

// resolveLocked picks the interface to operate on: the explicit name, the
// current selection, or the first enumerated interface.
func (d *Driver) resolveLocked(ctx context.Context, iface string) string {
	if iface != "" {
		return iface
	}
	if d.current != "" {
		return d.current
	}
	d.interfacesLocked(ctx)
	return d.current
}

func (d *Driver) cacheIndex(name string) int {
	for i := range d.cache {
		if d.cache[i].Name == name {
			return i
		}
	}
	return -1
}

func (d *Driver) setModeLocked(name string, mode wifi.InterfaceMode) {
	if idx := d.cacheIndex(name); idx >= 0 {
		d.cache[idx].Mode = mode
	}
}

func (d *Driver) renameLocked(oldName, newName string, mode wifi.InterfaceMode) {
	if idx := d.cacheIndex(oldName); idx >= 0 {
		d.cache[idx].Name = newName
		d.cache[idx].Mode = mode
	}
}
