package wifi

import "strings"

// SecurityLevel orders the recognized WiFi security families from weakest
// to strongest.
type SecurityLevel int

const (
	SecurityOpen SecurityLevel = iota
	SecurityWEP
	SecurityWPA
	SecurityWPA2
	SecurityWPA3
)

var securityLevelNames = [...]string{"Open", "WEP", "WPA", "WPA2", "WPA3"}

func (s SecurityLevel) String() string {
	if s < SecurityOpen || s > SecurityWPA3 {
		return "Unknown"
	}
	return securityLevelNames[s]
}

// ParseSecurityLevel maps a free-form security label onto a SecurityLevel.
// Matching is substring-based and the strongest family wins, so labels like
// "WPA2-PSK (TKIP) WPA" resolve to WPA2. Blank and unrecognized labels
// resolve to Open.
func ParseSecurityLevel(label string) SecurityLevel {
	u := strings.ToUpper(label)
	switch {
	case strings.Contains(u, "WPA3"):
		return SecurityWPA3
	case strings.Contains(u, "WPA2"):
		return SecurityWPA2
	case strings.Contains(u, "WPA"):
		return SecurityWPA
	case strings.Contains(u, "WEP"):
		return SecurityWEP
	default:
		return SecurityOpen
	}
}
