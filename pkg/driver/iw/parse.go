package iw

import (
	"math"
	"strconv"
	"strings"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

// The Linux wireless tools print block-oriented text: a header line opens a
// record and indented field lines fill it until the next header or EOF.
// Each parser below is a small accumulate/flush state machine over that
// shape, resilient to missing fields. Unseen fields take a documented
// default (signal -80 dBm, security "Open") rather than failing the record.

const (
	defaultSignalDBm = -80
	securityOpen     = "Open"
)

// parseIWDev parses `iw dev` output into interface records. Capability
// derived flags (SupportsMonitor, SupportsInjection, IsUp) are left for the
// driver to decorate.
func parseIWDev(out string) []wifi.InterfaceInfo {
	var (
		result  []wifi.InterfaceInfo
		current *wifi.InterfaceInfo
	)

	flush := func() {
		if current != nil && current.Name != "" {
			result = append(result, *current)
		}
		current = nil
	}

	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, "phy#"):
			// New radio context; any open interface block ends here.
			flush()

		case strings.HasPrefix(line, "Interface "):
			flush()
			current = &wifi.InterfaceInfo{
				Name: strings.TrimSpace(strings.TrimPrefix(line, "Interface ")),
				Mode: wifi.ModeManaged,
			}

		case current == nil:
			// Field lines outside an interface block are ignored.

		case strings.HasPrefix(line, "addr "):
			current.MAC = wifi.NormalizeBSSID(strings.TrimPrefix(line, "addr "))

		case strings.HasPrefix(line, "type "):
			current.Mode = parseMode(strings.TrimPrefix(line, "type "))

		case strings.HasPrefix(line, "channel "):
			// channel 6 (2437 MHz), width: 20 MHz, ...
			fields := strings.Fields(strings.TrimPrefix(line, "channel "))
			if len(fields) > 0 {
				current.Channel, _ = strconv.Atoi(fields[0])
			}
			if len(fields) > 1 {
				freq := strings.TrimPrefix(fields[1], "(")
				current.Frequency, _ = strconv.Atoi(freq)
			}

		case strings.HasPrefix(line, "txpower "):
			fields := strings.Fields(strings.TrimPrefix(line, "txpower "))
			if len(fields) > 0 {
				if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
					current.TxPower = int(v)
				}
			}
		}
	}
	flush()

	return result
}

func parseMode(s string) wifi.InterfaceMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monitor":
		return wifi.ModeMonitor
	case "ap", "master":
		return wifi.ModeMaster
	default:
		return wifi.ModeManaged
	}
}

// iwScanAccumulator carries the partial network record plus the security
// evidence seen so far; the final label is resolved at flush time.
type iwScanAccumulator struct {
	net     wifi.NetworkInfo
	sawRSN  bool
	sawWPA  bool
	sawWEP  bool
	privacy bool
	signal  bool
	ciphers []string
}

// parseIWScan parses `iw dev <iface> scan` output.
func parseIWScan(out string) []wifi.NetworkInfo {
	var (
		result []wifi.NetworkInfo
		acc    *iwScanAccumulator
	)

	flush := func() {
		if acc == nil || acc.net.BSSID == "" {
			acc = nil
			return
		}
		n := acc.net
		if !acc.signal {
			n.Signal = defaultSignalDBm
		}
		if n.Channel == 0 && n.Frequency > 0 {
			n.Channel = wifi.ChannelFromFrequency(n.Frequency)
		}
		n.Security = resolveSecurity(acc.sawRSN, acc.sawWPA, acc.sawWEP, acc.privacy)
		n.Encryption = strings.Join(acc.ciphers, " ")
		n.Hidden = strings.TrimSpace(n.SSID) == ""
		result = append(result, n)
		acc = nil
	}

	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "BSS ") {
			flush()
			acc = &iwScanAccumulator{}
			acc.net.BSSID = parseBSSHeader(line)
			continue
		}
		if acc == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "SSID:"):
			acc.net.SSID = strings.TrimSpace(strings.TrimPrefix(line, "SSID:"))

		case strings.HasPrefix(line, "signal:"):
			fields := strings.Fields(strings.TrimPrefix(line, "signal:"))
			if len(fields) > 0 {
				if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
					acc.net.Signal = int(v)
					acc.signal = true
				}
			}

		case strings.HasPrefix(line, "freq:"):
			val := strings.TrimSpace(strings.TrimPrefix(line, "freq:"))
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				acc.net.Frequency = int(v)
			}

		case strings.HasPrefix(line, "DS Parameter set: channel"):
			val := strings.TrimSpace(strings.TrimPrefix(line, "DS Parameter set: channel"))
			acc.net.Channel, _ = strconv.Atoi(val)

		case strings.HasPrefix(line, "RSN:"):
			acc.sawRSN = true

		case strings.HasPrefix(line, "WPA:"):
			acc.sawWPA = true

		case strings.HasPrefix(line, "WPS:"):
			acc.net.WPS = true

		case strings.HasPrefix(line, "capability:"):
			if strings.Contains(line, "Privacy") {
				acc.privacy = true
			}

		case strings.Contains(line, "WEP"):
			acc.sawWEP = true

		case strings.Contains(line, "Group cipher:") || strings.Contains(line, "Pairwise ciphers:"):
			acc.ciphers = appendCiphers(acc.ciphers, line)
		}
	}
	flush()

	return result
}

// parseBSSHeader extracts the MAC from lines like
// "BSS aa:bb:cc:dd:ee:ff(on wlan0) -- associated".
func parseBSSHeader(line string) string {
	rest := strings.TrimPrefix(line, "BSS ")
	if i := strings.IndexAny(rest, "( \t"); i >= 0 {
		rest = rest[:i]
	}
	return wifi.NormalizeBSSID(rest)
}

// resolveSecurity turns the evidence collected during a scan block into the
// normalized security family. RSN means WPA2; a WPA IE alone means WPA; the
// Privacy capability bit without any suite means WEP.
func resolveSecurity(rsn, wpa, wep, privacy bool) string {
	switch {
	case rsn && wpa:
		return "WPA/WPA2"
	case rsn:
		return "WPA2"
	case wpa:
		return "WPA"
	case wep || privacy:
		return "WEP"
	default:
		return securityOpen
	}
}

func appendCiphers(ciphers []string, line string) []string {
	for _, c := range []string{"TKIP", "CCMP"} {
		if !strings.Contains(line, c) {
			continue
		}
		seen := false
		for _, have := range ciphers {
			if have == c {
				seen = true
				break
			}
		}
		if !seen {
			ciphers = append(ciphers, c)
		}
	}
	return ciphers
}

// iwlistAccumulator mirrors iwScanAccumulator for the legacy grammar.
type iwlistAccumulator struct {
	net       wifi.NetworkInfo
	sawWPA2   bool
	sawWPA    bool
	encrypted bool
	signal    bool
	ciphers   []string
}

// parseIWListScan parses legacy `iwlist <iface> scan` output.
func parseIWListScan(out string) []wifi.NetworkInfo {
	var (
		result []wifi.NetworkInfo
		acc    *iwlistAccumulator
	)

	flush := func() {
		if acc == nil || acc.net.BSSID == "" {
			acc = nil
			return
		}
		n := acc.net
		if !acc.signal {
			n.Signal = defaultSignalDBm
		}
		if n.Frequency == 0 && n.Channel > 0 {
			n.Frequency = wifi.FrequencyFromChannel(n.Channel)
		}
		switch {
		case acc.sawWPA2:
			n.Security = "WPA2"
		case acc.sawWPA:
			n.Security = "WPA"
		case acc.encrypted:
			n.Security = "WEP"
		default:
			n.Security = securityOpen
		}
		n.Encryption = strings.Join(acc.ciphers, " ")
		n.Hidden = strings.TrimSpace(n.SSID) == ""
		result = append(result, n)
		acc = nil
	}

	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "Cell ") && strings.Contains(line, "Address:") {
			flush()
			acc = &iwlistAccumulator{}
			_, addr, _ := strings.Cut(line, "Address:")
			acc.net.BSSID = wifi.NormalizeBSSID(addr)
			continue
		}
		if acc == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "ESSID:"):
			acc.net.SSID = strings.Trim(strings.TrimPrefix(line, "ESSID:"), `"`)

		case strings.Contains(line, "Signal level="):
			_, rest, _ := strings.Cut(line, "Signal level=")
			fields := strings.Fields(rest)
			if len(fields) > 0 {
				if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
					acc.net.Signal = int(v)
					acc.signal = true
				}
			}

		case strings.HasPrefix(line, "Channel:"):
			acc.net.Channel, _ = strconv.Atoi(strings.TrimPrefix(line, "Channel:"))

		case strings.HasPrefix(line, "Frequency:"):
			// Frequency:2.437 GHz (Channel 6)
			fields := strings.Fields(strings.TrimPrefix(line, "Frequency:"))
			if len(fields) > 0 {
				if ghz, err := strconv.ParseFloat(fields[0], 64); err == nil {
					acc.net.Frequency = int(math.Round(ghz * 1000))
				}
			}

		case strings.HasPrefix(line, "Encryption key:"):
			acc.encrypted = strings.Contains(line, "on")

		case strings.Contains(line, "IEEE 802.11i/WPA2"):
			acc.sawWPA2 = true

		case strings.Contains(line, "WPA Version"):
			acc.sawWPA = true

		case strings.Contains(line, "Group Cipher") || strings.Contains(line, "Pairwise Ciphers"):
			acc.ciphers = appendCiphers(acc.ciphers, line)
		}
	}
	flush()

	return result
}

// parseIWConfig parses `iwconfig <iface>` output into the live association,
// or nil when the interface is not associated.
func parseIWConfig(out string) *wifi.NetworkInfo {
	if strings.Contains(out, "Not-Associated") {
		return nil
	}

	var (
		n     wifi.NetworkInfo
		assoc bool
	)

	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)

		if i := strings.Index(line, `ESSID:"`); i >= 0 {
			rest := line[i+len(`ESSID:"`):]
			if j := strings.Index(rest, `"`); j >= 0 {
				n.SSID = rest[:j]
				assoc = n.SSID != ""
			}
		}

		if _, rest, ok := strings.Cut(line, "Access Point: "); ok {
			fields := strings.Fields(rest)
			if len(fields) > 0 {
				n.BSSID = wifi.NormalizeBSSID(fields[0])
			}
		}

		if _, rest, ok := strings.Cut(line, "Frequency:"); ok {
			fields := strings.Fields(rest)
			if len(fields) > 0 {
				if ghz, err := strconv.ParseFloat(fields[0], 64); err == nil {
					if ghz < 1000 {
						n.Frequency = int(math.Round(ghz * 1000))
					} else {
						n.Frequency = int(math.Round(ghz))
					}
					n.Channel = wifi.ChannelFromFrequency(n.Frequency)
				}
			}
		}

		if _, rest, ok := strings.Cut(line, "Signal level="); ok {
			fields := strings.Fields(rest)
			if len(fields) > 0 {
				if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
					n.Signal = int(v)
				}
			}
		}
	}

	if !assoc && n.BSSID == "" {
		return nil
	}
	return &n
}

// parseIWVersion extracts the bare version string from `iw --version`
// output ("iw version 5.16" -> "5.16").
func parseIWVersion(out string) string {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
