package netsh

import (
	"strconv"
	"strings"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

// netsh prints colon-delimited "key : value" blocks. Interface records are
// terminated by a blank line; network records open on an "SSID n :" header
// with one nested "BSSID n :" sub-block per access point.

const (
	defaultSignalDBm = -80
	securityUnknown  = "Unknown"
)

// ifaceRecord is one block of `netsh wlan show interfaces`.
type ifaceRecord struct {
	Name        string
	Description string
	MAC         string
	State       string
	SSID        string
	BSSID       string
	Auth        string
	Cipher      string
	Channel     int
	SignalPct   int
	hasSignal   bool
}

func parseShowInterfaces(out string) []ifaceRecord {
	var (
		result  []ifaceRecord
		current *ifaceRecord
	)

	flush := func() {
		if current != nil && current.Name != "" {
			result = append(result, *current)
		}
		current = nil
	}

	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			flush()
			continue
		}

		key, value, ok := cutField(line)
		if !ok {
			continue
		}
		if current == nil {
			current = &ifaceRecord{}
		}

		switch key {
		case "Name":
			current.Name = value
		case "Description":
			current.Description = value
		case "Physical address":
			current.MAC = wifi.NormalizeBSSID(value)
		case "State":
			current.State = strings.ToLower(value)
		case "SSID":
			current.SSID = value
		case "BSSID":
			current.BSSID = wifi.NormalizeBSSID(value)
		case "Authentication":
			current.Auth = value
		case "Cipher":
			current.Cipher = value
		case "Channel":
			current.Channel, _ = strconv.Atoi(value)
		case "Signal":
			if pct, err := strconv.Atoi(strings.TrimSuffix(value, "%")); err == nil {
				current.SignalPct = pct
				current.hasSignal = true
			}
		}
	}
	flush()

	return result
}

// parseShowNetworks parses `netsh wlan show networks mode=bssid`. An SSID
// header carries authentication and cipher for every BSSID sub-block under
// it; each BSSID line becomes one network record.
func parseShowNetworks(out string) []wifi.NetworkInfo {
	var (
		result []wifi.NetworkInfo
		// Block context shared by the BSSIDs under one SSID header.
		ssid string
		auth string
		enc  string
		// The BSS record currently being filled.
		current *wifi.NetworkInfo
	)

	flush := func() {
		if current == nil || current.BSSID == "" {
			current = nil
			return
		}
		n := *current
		n.SSID = ssid
		n.Hidden = strings.TrimSpace(ssid) == ""
		n.Security = auth
		if n.Security == "" {
			n.Security = securityUnknown
		}
		if strings.EqualFold(n.Security, "Open") {
			n.Security = "Open"
		}
		n.Encryption = enc
		if n.Channel > 0 && n.Frequency == 0 {
			n.Frequency = wifi.FrequencyFromChannel(n.Channel)
		}
		result = append(result, n)
		current = nil
	}

	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "SSID") {
			flush()
			_, value, _ := cutField(line)
			ssid, auth, enc = value, "", ""
			continue
		}

		key, value, ok := cutField(line)
		if !ok {
			continue
		}

		switch {
		case key == "Authentication":
			auth = value

		case key == "Encryption":
			if !strings.EqualFold(value, "None") {
				enc = value
			}

		case strings.HasPrefix(key, "BSSID"):
			flush()
			current = &wifi.NetworkInfo{
				BSSID:  wifi.NormalizeBSSID(value),
				Signal: defaultSignalDBm,
			}

		case current == nil:
			// Field lines before the first BSSID belong to the header.

		case key == "Signal":
			if pct, err := strconv.Atoi(strings.TrimSuffix(value, "%")); err == nil {
				current.Signal = wifi.PercentToDBm(pct)
			}

		case key == "Channel":
			current.Channel, _ = strconv.Atoi(value)
		}
	}
	flush()

	return result
}

// parseShowProfiles extracts saved profile names from
// `netsh wlan show profiles`.
func parseShowProfiles(out string) []string {
	var profiles []string
	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)
		if !strings.Contains(line, "All User Profile") {
			continue
		}
		if _, value, ok := cutField(line); ok && value != "" {
			profiles = append(profiles, value)
		}
	}
	return profiles
}

// cutField splits a "key : value" line on the first colon. MAC addresses in
// the value keep their own colons intact.
func cutField(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}
