// Package wifi defines the canonical network and interface entities shared
// by the platform drivers, the session store, and the vulnerability scanner.
package wifi

import (
	"strings"
	"time"
)

// InterfaceMode is the operating mode of a wireless interface.
type InterfaceMode string

const (
	ModeManaged InterfaceMode = "managed"
	ModeMonitor InterfaceMode = "monitor"
	ModeMaster  InterfaceMode = "master"
)

// InterfaceInfo describes one wireless interface at enumeration time.
// Instances are rebuilt on every enumeration call and never persisted;
// callers hold onto the Name they need.
type InterfaceInfo struct {
	Name              string        `json:"name" yaml:"name"`
	MAC               string        `json:"mac" yaml:"mac"`
	Driver            string        `json:"driver,omitempty" yaml:"driver,omitempty"`
	Mode              InterfaceMode `json:"mode" yaml:"mode"`
	Channel           int           `json:"channel,omitempty" yaml:"channel,omitempty"`
	Frequency         int           `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	TxPower           int           `json:"tx_power,omitempty" yaml:"tx_power,omitempty"`
	IsUp              bool          `json:"is_up" yaml:"is_up"`
	SupportsMonitor   bool          `json:"supports_monitor" yaml:"supports_monitor"`
	SupportsInjection bool          `json:"supports_injection" yaml:"supports_injection"`
}

// NetworkInfo is one discovered access point. BSSID is the invariant
// identity; SSID may be empty (hidden network) and is never unique.
type NetworkInfo struct {
	SSID       string    `json:"ssid" yaml:"ssid"`
	BSSID      string    `json:"bssid" yaml:"bssid"`
	Signal     int       `json:"signal" yaml:"signal"`
	Channel    int       `json:"channel" yaml:"channel"`
	Frequency  int       `json:"frequency" yaml:"frequency"`
	Security   string    `json:"security" yaml:"security"`
	Encryption string    `json:"encryption,omitempty" yaml:"encryption,omitempty"`
	Hidden     bool      `json:"hidden" yaml:"hidden"`
	WPS        bool      `json:"wps" yaml:"wps"`
	FirstSeen  time.Time `json:"first_seen,omitempty" yaml:"first_seen,omitempty"`
	LastSeen   time.Time `json:"last_seen,omitempty" yaml:"last_seen,omitempty"`
}

// DisplayName returns the SSID, or a hidden-network placeholder when the
// SSID is empty.
func (n NetworkInfo) DisplayName() string {
	if strings.TrimSpace(n.SSID) == "" {
		return "<hidden>"
	}
	return n.SSID
}

// NormalizeBSSID uppercases and trims a MAC string so BSSIDs from different
// tool outputs compare equal.
func NormalizeBSSID(bssid string) string {
	return strings.ToUpper(strings.TrimSpace(bssid))
}
