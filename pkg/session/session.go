// Package session holds the in-memory application state shared across
// commands: discovered networks keyed by BSSID, enumerated interfaces,
// produced audit reports, and scan lifecycle counters. Every state
// change is announced on the event bus so consumers can react without
// polling. The session is constructed explicitly at the composition
// root and passed down; there is no package-level instance.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/audit"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/event"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

// ScanEvent is the payload for scan.started and scan.completed. Count
// and Total are only set on completion.
type ScanEvent struct {
	Interface string `json:"interface"`
	Count     int    `json:"count"`
	Total     int    `json:"total"`
}

// InterfaceChange is the payload for interface.changed.
type InterfaceChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// MonitorEvent is the payload for monitor.enabled and monitor.disabled.
type MonitorEvent struct {
	Interface string `json:"interface"`
}

// Stats is a point-in-time summary of the session.
type Stats struct {
	Networks   int           `json:"networks" yaml:"networks"`
	Hidden     int           `json:"hidden" yaml:"hidden"`
	Open       int           `json:"open" yaml:"open"`
	Interfaces int           `json:"interfaces" yaml:"interfaces"`
	Reports    int           `json:"reports" yaml:"reports"`
	Scans      int           `json:"scans" yaml:"scans"`
	LastScanAt time.Time     `json:"last_scan_at,omitempty" yaml:"last_scan_at,omitempty"`
	Uptime     time.Duration `json:"uptime" yaml:"uptime"`
}

// Session tracks application state for one process lifetime.
type Session struct {
	mu  sync.RWMutex
	bus *event.Bus
	log zerolog.Logger

	id        string
	startedAt time.Time

	networks   map[string]wifi.NetworkInfo
	interfaces []wifi.InterfaceInfo
	reports    []*audit.Report
	selected   string

	current   string
	monitor   bool
	scanning  bool
	scanCount int
	lastScan  time.Time
}

// New creates a session publishing on the given bus. A nil bus gets a
// private one so callers that never subscribe need no wiring.
func New(bus *event.Bus) *Session {
	if bus == nil {
		bus = event.New()
	}
	s := &Session{
		bus:       bus,
		log:       log.With().Str("component", "session").Logger(),
		id:        fmt.Sprintf("session_%d", time.Now().Unix()),
		startedAt: time.Now(),
		networks:  make(map[string]wifi.NetworkInfo),
	}
	s.log.Debug().Str("session_id", s.id).Msg("Session initialized")
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Bus returns the event bus this session publishes on.
func (s *Session) Bus() *event.Bus { return s.bus }

// SetInterfaces replaces the known interface list.
func (s *Session) SetInterfaces(ifaces []wifi.InterfaceInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interfaces = append([]wifi.InterfaceInfo(nil), ifaces...)
}

// Interfaces returns a copy of the known interface list.
func (s *Session) Interfaces() []wifi.InterfaceInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]wifi.InterfaceInfo(nil), s.interfaces...)
}

// SetCurrentInterface records the active interface and publishes
// interface.changed when it differs from the previous one.
func (s *Session) SetCurrentInterface(ctx context.Context, name string) {
	s.mu.Lock()
	old := s.current
	s.current = name
	s.mu.Unlock()

	if old != name {
		s.bus.Publish(ctx, event.TopicInterfaceChanged, InterfaceChange{Old: old, New: name})
	}
}

// CurrentInterface returns the active interface name.
func (s *Session) CurrentInterface() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetMonitorMode records the monitor state for an interface and
// publishes monitor.enabled or monitor.disabled on transitions.
func (s *Session) SetMonitorMode(ctx context.Context, iface string, enabled bool) {
	s.mu.Lock()
	changed := s.monitor != enabled
	s.monitor = enabled
	s.mu.Unlock()

	if !changed {
		return
	}
	topic := event.TopicMonitorDisabled
	if enabled {
		topic = event.TopicMonitorEnabled
	}
	s.bus.Publish(ctx, topic, MonitorEvent{Interface: iface})
}

// MonitorMode reports whether monitor mode is recorded as active.
func (s *Session) MonitorMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.monitor
}

// BeginScan marks a scan pass as running and publishes scan.started on
// the idle-to-scanning transition.
func (s *Session) BeginScan(ctx context.Context, iface string) {
	s.mu.Lock()
	was := s.scanning
	s.scanning = true
	s.mu.Unlock()

	if !was {
		s.bus.Publish(ctx, event.TopicScanStarted, ScanEvent{Interface: iface})
	}
}

// Scanning reports whether a scan pass is marked as running.
func (s *Session) Scanning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanning
}

// RecordScan folds one scan pass into the session: every network is
// upserted, the scan counters advance, and scan.completed is published
// with the pass size and new total. It returns how many networks were
// new versus refreshed.
func (s *Session) RecordScan(ctx context.Context, iface string, networks []wifi.NetworkInfo) (added, updated int) {
	for _, n := range networks {
		if s.UpsertNetwork(ctx, n) {
			added++
		} else {
			updated++
		}
	}

	s.mu.Lock()
	s.scanCount++
	s.lastScan = time.Now()
	s.scanning = false
	total := len(s.networks)
	s.mu.Unlock()

	s.bus.Publish(ctx, event.TopicScanCompleted, ScanEvent{
		Interface: iface,
		Count:     len(networks),
		Total:     total,
	})
	s.log.Debug().
		Str("iface", iface).
		Int("added", added).
		Int("updated", updated).
		Msg("Scan results recorded")
	return added, updated
}

// UpsertNetwork merges one network record by BSSID. New records publish
// network.found, refreshed ones network.updated. A record seen before
// keeps its original FirstSeen; every other field takes the incoming
// value. Records without a BSSID are dropped. Returns true when the
// network was not known before.
func (s *Session) UpsertNetwork(ctx context.Context, n wifi.NetworkInfo) bool {
	key := wifi.NormalizeBSSID(n.BSSID)
	if key == "" {
		s.log.Warn().Str("ssid", n.SSID).Msg("Dropping network without BSSID")
		return false
	}
	n.BSSID = key
	if n.LastSeen.IsZero() {
		n.LastSeen = time.Now()
	}

	s.mu.Lock()
	prev, exists := s.networks[key]
	if exists && !prev.FirstSeen.IsZero() {
		n.FirstSeen = prev.FirstSeen
	} else if n.FirstSeen.IsZero() {
		n.FirstSeen = n.LastSeen
	}
	s.networks[key] = n
	s.mu.Unlock()

	topic := event.TopicNetworkFound
	if exists {
		topic = event.TopicNetworkUpdated
	}
	s.bus.Publish(ctx, topic, n)
	return !exists
}

// RemoveNetwork deletes a network and publishes network.lost with the
// removed record.
func (s *Session) RemoveNetwork(ctx context.Context, bssid string) bool {
	key := wifi.NormalizeBSSID(bssid)

	s.mu.Lock()
	n, exists := s.networks[key]
	if exists {
		delete(s.networks, key)
		if s.selected == key {
			s.selected = ""
		}
	}
	s.mu.Unlock()

	if !exists {
		return false
	}
	s.bus.Publish(ctx, event.TopicNetworkLost, n)
	return true
}

// Network looks up one network by BSSID.
func (s *Session) Network(bssid string) (wifi.NetworkInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.networks[wifi.NormalizeBSSID(bssid)]
	return n, ok
}

// Networks returns all known networks ordered by signal strength,
// strongest first, with BSSID as the tie-breaker.
func (s *Session) Networks() []wifi.NetworkInfo {
	s.mu.RLock()
	result := make([]wifi.NetworkInfo, 0, len(s.networks))
	for _, n := range s.networks {
		result = append(result, n)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Signal != result[j].Signal {
			return result[i].Signal > result[j].Signal
		}
		return result[i].BSSID < result[j].BSSID
	})
	return result
}

// ClearNetworks drops every known network and the selection.
func (s *Session) ClearNetworks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.networks = make(map[string]wifi.NetworkInfo)
	s.selected = ""
}

// Select marks a known network as the audit target. Selecting an
// unknown BSSID is a no-op returning false.
func (s *Session) Select(bssid string) bool {
	key := wifi.NormalizeBSSID(bssid)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.networks[key]; !ok {
		return false
	}
	s.selected = key
	return true
}

// Selected returns the currently selected network, if any.
func (s *Session) Selected() (wifi.NetworkInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return wifi.NetworkInfo{}, false
	}
	n, ok := s.networks[s.selected]
	return n, ok
}

// AddReport stores an audit report and publishes audit.completed.
func (s *Session) AddReport(ctx context.Context, r *audit.Report) {
	s.mu.Lock()
	s.reports = append(s.reports, r)
	s.mu.Unlock()

	s.bus.Publish(ctx, event.TopicAuditCompleted, r)
}

// Reports returns the stored audit reports in insertion order.
func (s *Session) Reports() []*audit.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*audit.Report(nil), s.reports...)
}

// Stats summarizes the session state.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Networks:   len(s.networks),
		Interfaces: len(s.interfaces),
		Reports:    len(s.reports),
		Scans:      s.scanCount,
		LastScanAt: s.lastScan,
		Uptime:     time.Since(s.startedAt),
	}
	for _, n := range s.networks {
		if n.Hidden {
			st.Hidden++
		}
		if wifi.ParseSecurityLevel(n.Security) == wifi.SecurityOpen {
			st.Open++
		}
	}
	return st
}
