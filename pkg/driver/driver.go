// Package driver defines the platform-abstracted contract every wireless
// driver implements, the capability negotiation around it, and the shared
// runner used to invoke external OS tooling.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

// Driver is the contract between the rest of the system and one platform's
// wireless tooling. Implementations are best-effort and non-throwing: no
// operation returns a Go error. Failures surface as empty results, nil, or
// an OpResult carrying a reason.
//
// A driver instance assumes one logical operation at a time; serializing
// concurrent scans on the same interface is the caller's responsibility.
type Driver interface {
	// Initialize probes for required external tools and privilege level.
	// It returns false when preconditions are unmet, leaving the driver
	// usable in a degraded, capability-limited state. It never errors.
	Initialize(ctx context.Context) bool

	// Capabilities returns the set of operations this instance can
	// truthfully perform. Callers must check before invoking optional
	// operations.
	Capabilities() Capability

	// Platform names the platform this driver serves ("linux", "windows").
	Platform() string

	// Interfaces enumerates wireless interfaces. It is idempotent, updates
	// the driver's internal interface cache, and selects the first
	// discovered interface if none is currently selected.
	Interfaces(ctx context.Context) []wifi.InterfaceInfo

	// CurrentInterface returns the name of the selected interface, or ""
	// when enumeration has not found any.
	CurrentInterface() string

	// ScanNetworks performs one scan pass on iface (or the current
	// interface when iface is empty), bounded by timeout. It returns
	// whatever was successfully parsed, even on partial failure; a timeout
	// yields an empty slice indistinguishable from "no networks found".
	ScanNetworks(ctx context.Context, iface string, timeout time.Duration) []wifi.NetworkInfo

	// CurrentConnection reflects live association state, independent of
	// scan results. nil means not associated (or not determinable).
	CurrentConnection(ctx context.Context) *wifi.NetworkInfo

	// EnableMonitorMode switches iface into monitor mode. Requires the
	// MonitorMode capability.
	EnableMonitorMode(ctx context.Context, iface string) OpResult

	// DisableMonitorMode reverts iface to managed mode and restores the
	// pre-monitor interface name as current.
	DisableMonitorMode(ctx context.Context, iface string) OpResult

	// SetChannel tunes iface to the given channel.
	SetChannel(ctx context.Context, iface string, channel int) OpResult

	// Channel reports the current channel of iface; ok is false when it
	// cannot be determined.
	Channel(ctx context.Context, iface string) (channel int, ok bool)

	// SetTxPower sets the transmit power of iface in dBm.
	SetTxPower(ctx context.Context, iface string, dbm int) OpResult

	// Cleanup releases driver resources. If the current interface is still
	// in monitor mode it is reverted first, so the OS network stack is
	// left usable even on abnormal shutdown.
	Cleanup(ctx context.Context)
}

// OpResult is the non-throwing outcome of an optional driver operation.
type OpResult struct {
	OK     bool   `json:"ok" yaml:"ok"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Ok returns a successful OpResult.
func Ok() OpResult {
	return OpResult{OK: true}
}

// Fail returns a failed OpResult with a formatted reason.
func Fail(format string, args ...any) OpResult {
	return OpResult{OK: false, Reason: fmt.Sprintf(format, args...)}
}

// Unsupported is the defined result for an operation the platform cannot
// perform. Callers discover this ahead of time via Capabilities.
func Unsupported(op, platform string) OpResult {
	return OpResult{OK: false, Reason: fmt.Sprintf("%s is not supported on %s", op, platform)}
}
