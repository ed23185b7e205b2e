package driver

import "strings"

// Capability is a set-valued flag describing what a driver instance can
// truthfully perform. An operation invoked without its capability returns a
// defined failure instead of being attempted.
type Capability uint16

const (
	CapScan Capability = 1 << iota
	CapMonitorMode
	CapPacketInjection
	CapChannelHop
	CapDeauth
	CapWPSPin
	CapHandshakeCapture
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapScan, "scan"},
	{CapMonitorMode, "monitor_mode"},
	{CapPacketInjection, "packet_injection"},
	{CapChannelHop, "channel_hop"},
	{CapDeauth, "deauth"},
	{CapWPSPin, "wps_pin"},
	{CapHandshakeCapture, "handshake_capture"},
}

// Has reports whether every capability in want is present.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// Names lists the set members in declaration order.
func (c Capability) Names() []string {
	var names []string
	for _, cn := range capabilityNames {
		if c.Has(cn.cap) {
			names = append(names, cn.name)
		}
	}
	return names
}

func (c Capability) String() string {
	names := c.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
