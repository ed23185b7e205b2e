// Package kali wraps the aircrack-ng era tooling (airmon-ng,
// aireplay-ng, macchanger) available on security-oriented Linux
// distributions. It probes and configures adapters for testing; it
// never transmits attack frames.
package kali

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/driver"
)

const (
	cmdTimeout   = 10 * time.Second
	probeTimeout = 30 * time.Second
)

// AdapterInfo describes one wireless adapter as reported by airmon-ng,
// enriched with its MAC and injection support.
type AdapterInfo struct {
	Phy               string `json:"phy" yaml:"phy"`
	Name              string `json:"name" yaml:"name"`
	Driver            string `json:"driver" yaml:"driver"`
	Chipset           string `json:"chipset" yaml:"chipset"`
	MAC               string `json:"mac" yaml:"mac"`
	SupportsInjection bool   `json:"supports_injection" yaml:"supports_injection"`
}

// Manager shells out to the aircrack-ng toolchain. Operations degrade
// to failed OpResults off a security distro or without the tools; the
// manager never propagates an error.
type Manager struct {
	mu     sync.Mutex
	runner driver.CommandRunner
	log    zerolog.Logger

	securityDistro func() bool
	sysClassNet    string

	// originalMACs remembers the factory MAC per interface so
	// RestoreMAC can always revert a spoof.
	originalMACs map[string]string
}

// Option configures a Manager.
type Option func(*Manager)

// WithRunner substitutes the external tool runner.
func WithRunner(r driver.CommandRunner) Option {
	return func(m *Manager) { m.runner = r }
}

// WithSecurityDistroCheck substitutes the security-distribution probe.
func WithSecurityDistroCheck(f func() bool) Option {
	return func(m *Manager) { m.securityDistro = f }
}

// WithSysClassNet points the MAC lookup at a different sysfs root.
func WithSysClassNet(path string) Option {
	return func(m *Manager) { m.sysClassNet = path }
}

// NewManager returns an adapter manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		runner:         driver.NewExecRunner(),
		log:            log.With().Str("component", "kali.adapters").Logger(),
		securityDistro: driver.IsSecurityDistro,
		sysClassNet:    "/sys/class/net",
		originalMACs:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Available reports whether the toolchain can be used at all.
func (m *Manager) Available() bool {
	return m.securityDistro() && m.runner.Available("airmon-ng")
}

// ListAdapters enumerates adapters via airmon-ng. Off a security
// distro, or when the tool fails, it returns an empty list.
func (m *Manager) ListAdapters(ctx context.Context) []AdapterInfo {
	if !m.securityDistro() {
		m.log.Debug().Msg("Not a security distribution, no adapters listed")
		return nil
	}

	out, err := m.runner.Run(ctx, probeTimeout, "airmon-ng")
	if err != nil {
		m.log.Warn().Err(err).Msg("airmon-ng failed")
		return nil
	}

	adapters := parseAirmonList(out)
	for i := range adapters {
		adapters[i].MAC = m.readMAC(adapters[i].Name)
		adapters[i].SupportsInjection = m.TestInjection(ctx, adapters[i].Name)
	}
	return adapters
}

// TestInjection runs the aireplay-ng injection self-test. True only
// when the tool confirms injection is working.
func (m *Manager) TestInjection(ctx context.Context, iface string) bool {
	if iface == "" || !m.runner.Available("aireplay-ng") {
		return false
	}
	out, err := m.runner.Run(ctx, probeTimeout, "aireplay-ng", "--test", iface)
	if err != nil {
		return false
	}
	return strings.Contains(out, "Injection is working")
}

// SpoofMAC sets a new MAC on iface via macchanger, bracketing the
// change with link down/up. An empty mac requests a random one. The
// original MAC is remembered for RestoreMAC.
func (m *Manager) SpoofMAC(ctx context.Context, iface, mac string) driver.OpResult {
	if !m.securityDistro() {
		return driver.Fail("MAC spoofing requires a security-oriented distribution")
	}
	if iface == "" {
		return driver.Fail("no interface given")
	}
	if !m.runner.Available("macchanger") {
		return driver.Fail("macchanger not found")
	}

	m.mu.Lock()
	if _, ok := m.originalMACs[iface]; !ok {
		m.originalMACs[iface] = m.readMAC(iface)
	}
	m.mu.Unlock()

	if _, err := m.runner.Run(ctx, cmdTimeout, "ip", "link", "set", iface, "down"); err != nil {
		return driver.Fail("bring %s down: %v", iface, err)
	}

	args := []string{"-r", iface}
	if mac != "" {
		args = []string{"-m", mac, iface}
	}
	_, macErr := m.runner.Run(ctx, cmdTimeout, "macchanger", args...)

	// Bring the link back up even when macchanger failed, so the
	// interface is not left down.
	if _, err := m.runner.Run(ctx, cmdTimeout, "ip", "link", "set", iface, "up"); err != nil {
		return driver.Fail("bring %s up: %v", iface, err)
	}
	if macErr != nil {
		return driver.Fail("macchanger: %v", macErr)
	}

	applied := m.readMAC(iface)
	m.log.Info().Str("iface", iface).Str("mac", applied).Msg("MAC address changed")
	return driver.OpResult{OK: true, Reason: applied}
}

// RestoreMAC reverts iface to the MAC recorded before the first spoof.
func (m *Manager) RestoreMAC(ctx context.Context, iface string) driver.OpResult {
	m.mu.Lock()
	original, ok := m.originalMACs[iface]
	m.mu.Unlock()
	if !ok {
		return driver.Fail("no original MAC recorded for %s", iface)
	}

	res := m.SpoofMAC(ctx, iface, original)
	if res.OK {
		m.mu.Lock()
		delete(m.originalMACs, iface)
		m.mu.Unlock()
	}
	return res
}

// SetChannel tunes iface to the given channel via iw.
func (m *Manager) SetChannel(ctx context.Context, iface string, channel int) driver.OpResult {
	if iface == "" {
		return driver.Fail("no interface given")
	}
	if _, err := m.runner.Run(ctx, cmdTimeout, "iw", "dev", iface, "set", "channel", strconv.Itoa(channel)); err != nil {
		return driver.Fail("set channel %d on %s: %v", channel, iface, err)
	}
	return driver.Ok()
}

// SetTxPower sets the transmit power of iface. iw takes mBm, so the
// dBm value is multiplied by 100.
func (m *Manager) SetTxPower(ctx context.Context, iface string, dbm int) driver.OpResult {
	if iface == "" {
		return driver.Fail("no interface given")
	}
	mbm := strconv.Itoa(dbm * 100)
	if _, err := m.runner.Run(ctx, cmdTimeout, "iw", "dev", iface, "set", "txpower", "fixed", mbm); err != nil {
		return driver.Fail("set txpower %d dBm on %s: %v", dbm, iface, err)
	}
	return driver.Ok()
}

func (m *Manager) readMAC(iface string) string {
	data, err := os.ReadFile(filepath.Join(m.sysClassNet, iface, "address"))
	if err != nil {
		return "00:00:00:00:00:00"
	}
	return strings.TrimSpace(string(data))
}
