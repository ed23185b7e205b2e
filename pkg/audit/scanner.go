// Package audit scores WiFi networks against a fixed set of known
// wireless-security weaknesses. The scanner is purely passive: it
// consumes an already-discovered network record, performs no I/O, and
// cannot fail.
package audit

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

// Scanner runs the vulnerability checks. Analyze is a total function
// over any well-formed network record; the only state the scanner keeps
// is a transient in-progress flag and the last produced report.
type Scanner struct {
	mu       sync.Mutex
	scanning bool
	last     *Report
	log      zerolog.Logger
}

// NewScanner returns a ready scanner.
func NewScanner() *Scanner {
	return &Scanner{
		log: log.With().Str("component", "audit").Logger(),
	}
}

// Analyze runs every check against the network in a fixed order and
// returns the scored report. Checks are independent: no check alters
// another check's outcome, so the final score does not depend on order,
// only the listing of findings does.
func (s *Scanner) Analyze(network wifi.NetworkInfo) *Report {
	s.mu.Lock()
	s.scanning = true
	s.mu.Unlock()

	report := NewReport(network.BSSID, network.SSID)

	checkEncryption(network, report)
	checkWPS(network, report)
	checkSignal(network, report)
	checkHiddenSSID(network, report)
	checkChannel(network, report)
	buildRecommendations(report)

	report.CompletedAt = time.Now()

	s.mu.Lock()
	s.last = report
	s.scanning = false
	s.mu.Unlock()

	s.log.Debug().
		Str("bssid", network.BSSID).
		Int("findings", len(report.Vulnerabilities)).
		Int("score", report.Score).
		Msg("Network analysis completed")

	return report
}

// Scanning reports whether an analysis is currently in progress.
func (s *Scanner) Scanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanning
}

// LastReport returns the most recently produced report, or nil if no
// analysis has run yet.
func (s *Scanner) LastReport() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func checkEncryption(network wifi.NetworkInfo, report *Report) {
	security := strings.ToUpper(network.Security)
	cipher := strings.ToUpper(network.Encryption)

	switch {
	case security == "" || security == "NONE" || strings.Contains(security, "OPEN"):
		report.Add(Vulnerability{
			ID:             "OPEN_NETWORK",
			Name:           "Open Network (No Encryption)",
			Description:    "Network has no encryption. All traffic is visible to anyone nearby.",
			Severity:       SeverityCritical,
			Category:       "Encryption",
			Recommendation: "Enable WPA2 or WPA3 encryption immediately.",
		})
	case strings.Contains(security, "WEP"):
		report.Add(Vulnerability{
			ID:             "WEP_ENCRYPTION",
			Name:           "WEP Encryption (Deprecated)",
			Description:    "WEP encryption is severely broken and can be cracked in minutes.",
			Severity:       SeverityCritical,
			Category:       "Encryption",
			CVE:            "CVE-2001-0131",
			Recommendation: "Upgrade to WPA2 or WPA3 encryption.",
		})
	case strings.Contains(security, "WPA") && !strings.Contains(security, "WPA2") && !strings.Contains(security, "WPA3"):
		report.Add(Vulnerability{
			ID:             "WPA_ENCRYPTION",
			Name:           "WPA Encryption (Outdated)",
			Description:    "WPA1 has known vulnerabilities and should be upgraded.",
			Severity:       SeverityHigh,
			Category:       "Encryption",
			Recommendation: "Upgrade to WPA2 or WPA3 encryption.",
		})
	case strings.Contains(security, "WPA2") && (strings.Contains(security, "TKIP") || strings.Contains(cipher, "TKIP")):
		report.Add(Vulnerability{
			ID:             "WPA2_TKIP",
			Name:           "WPA2 with TKIP (Weak)",
			Description:    "TKIP cipher has known weaknesses. AES/CCMP is recommended.",
			Severity:       SeverityMedium,
			Category:       "Encryption",
			Recommendation: "Configure WPA2 to use AES/CCMP cipher only.",
		})
	case strings.Contains(security, "WPA2"):
		report.Add(Vulnerability{
			ID:             "WPA2_PMKID",
			Name:           "WPA2 PMKID Attack Possible",
			Description:    "WPA2 networks may be vulnerable to offline PMKID attacks.",
			Severity:       SeverityLow,
			Category:       "Encryption",
			CVE:            "CVE-2018-14847",
			Recommendation: "Use strong, complex passwords and consider WPA3.",
		})
	case strings.Contains(security, "WPA3"):
		report.Add(Vulnerability{
			ID:             "WPA3_GOOD",
			Name:           "WPA3 Encryption (Strong)",
			Description:    "WPA3 provides strong encryption with SAE key exchange.",
			Severity:       SeverityInfo,
			Category:       "Encryption",
			Recommendation: "Maintain WPA3 configuration.",
		})
	}
}

func checkWPS(network wifi.NetworkInfo, report *Report) {
	if !network.WPS {
		return
	}
	report.Add(Vulnerability{
		ID:             "WPS_ENABLED",
		Name:           "WPS Enabled",
		Description:    "WPS PIN can be brute-forced, allowing network access.",
		Severity:       SeverityHigh,
		Category:       "Authentication",
		CVE:            "CVE-2011-5053",
		Recommendation: "Disable WPS in router settings.",
	})
}

func checkSignal(network wifi.NetworkInfo, report *Report) {
	if network.Signal < -30 {
		return
	}
	report.Add(Vulnerability{
		ID:             "SIGNAL_TOO_STRONG",
		Name:           "Excessive Signal Strength",
		Description:    "Strong signal extends beyond intended area, increasing attack surface.",
		Severity:       SeverityLow,
		Category:       "Physical Security",
		Recommendation: "Reduce transmit power to limit coverage area.",
	})
}

func checkHiddenSSID(network wifi.NetworkInfo, report *Report) {
	if !network.Hidden {
		return
	}
	report.Add(Vulnerability{
		ID:             "HIDDEN_SSID",
		Name:           "Hidden SSID (False Security)",
		Description:    "Hidden SSIDs provide no real security and are easily discovered.",
		Severity:       SeverityInfo,
		Category:       "Misconfiguration",
		Recommendation: "Hidden SSIDs don't improve security. Focus on strong encryption.",
	})
}

// checkChannel flags 2.4 GHz channels that overlap with the
// non-overlapping set {1, 6, 11}.
func checkChannel(network wifi.NetworkInfo, report *Report) {
	ch := network.Channel
	if ch < 2 || ch > 10 {
		return
	}
	if ch == 6 {
		return
	}
	report.Add(Vulnerability{
		ID:             "CHANNEL_OVERLAP",
		Name:           "Overlapping Channel",
		Description:    fmt.Sprintf("Channel %d overlaps with adjacent channels.", ch),
		Severity:       SeverityInfo,
		Category:       "Configuration",
		Recommendation: "Use non-overlapping channels: 1, 6, or 11 for 2.4GHz.",
	})
}

func buildRecommendations(report *Report) {
	recs := make([]string, 0, 6)

	if report.Count(SeverityCritical) > 0 {
		recs = append(recs, "URGENT: Address critical vulnerabilities immediately.")
	}
	if report.Count(SeverityHigh) > 0 {
		recs = append(recs, "Address high-severity issues as soon as possible.")
	}

	switch {
	case report.Score < 50:
		recs = append(recs, "Network security is poor. Major improvements needed.")
	case report.Score < 75:
		recs = append(recs, "Network security is fair. Some improvements recommended.")
	default:
		recs = append(recs, "Network security is good. Monitor for changes.")
	}

	recs = append(recs,
		"Regularly update router firmware.",
		"Use strong, unique passwords.",
		"Enable network logging if available.",
	)

	report.Recommendations = recs
}
