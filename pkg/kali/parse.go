package kali

import "strings"

// parseAirmonList parses `airmon-ng` adapter listing output: a banner,
// a "PHY Interface Driver Chipset" header, then one tab-separated row
// per adapter. Rows before the header and blank separator lines are
// skipped.
func parseAirmonList(out string) []AdapterInfo {
	var adapters []AdapterInfo
	headerSeen := false

	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !headerSeen {
			if strings.HasPrefix(line, "PHY") {
				headerSeen = true
			}
			continue
		}

		parts := strings.Split(line, "\t")
		fields := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				fields = append(fields, p)
			}
		}
		if len(fields) < 4 {
			continue
		}
		adapters = append(adapters, AdapterInfo{
			Phy:     fields[0],
			Name:    fields[1],
			Driver:  fields[2],
			Chipset: strings.Join(fields[3:], " "),
		})
	}
	return adapters
}
