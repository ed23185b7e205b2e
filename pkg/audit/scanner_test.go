package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

func findingIDs(r *Report) []string {
	ids := make([]string, 0, len(r.Vulnerabilities))
	for _, v := range r.Vulnerabilities {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestAnalyzeOpenNetwork(t *testing.T) {
	s := NewScanner()
	report := s.Analyze(wifi.NetworkInfo{
		SSID:     "CoffeeShop",
		BSSID:    "AA:BB:CC:DD:EE:FF",
		Security: "Open",
		Signal:   -55,
		Channel:  1,
		WPS:      false,
	})

	require.Len(t, report.Vulnerabilities, 1)
	assert.Equal(t, "OPEN_NETWORK", report.Vulnerabilities[0].ID)
	assert.Equal(t, SeverityCritical, report.Vulnerabilities[0].Severity)
	assert.Equal(t, 75, report.Score)
	assert.Equal(t, "CoffeeShop", report.SSID)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", report.BSSID)
	assert.False(t, report.CompletedAt.IsZero())

	require.NotEmpty(t, report.Recommendations)
	assert.Equal(t, "URGENT: Address critical vulnerabilities immediately.", report.Recommendations[0])
}

func TestAnalyzeWPA2WithWPS(t *testing.T) {
	s := NewScanner()
	report := s.Analyze(wifi.NetworkInfo{
		SSID:     "HomeNet",
		BSSID:    "11:22:33:44:55:66",
		Security: "WPA2",
		Signal:   -65,
		Channel:  1,
		WPS:      true,
	})

	ids := findingIDs(report)
	assert.Contains(t, ids, "WPA2_PMKID")
	assert.Contains(t, ids, "WPS_ENABLED")
	assert.Equal(t, 80, report.Score, "high (15) plus low (5) off a full score")
	assert.Equal(t, 1, report.Count(SeverityHigh))
	assert.Equal(t, 1, report.Count(SeverityLow))
}

func TestEncryptionChecks(t *testing.T) {
	tests := []struct {
		name         string
		security     string
		encryption   string
		wantID       string
		wantSeverity Severity
	}{
		{"blank is open", "", "", "OPEN_NETWORK", SeverityCritical},
		{"explicit none", "NONE", "", "OPEN_NETWORK", SeverityCritical},
		{"open label", "Open", "", "OPEN_NETWORK", SeverityCritical},
		{"wep", "WEP", "", "WEP_ENCRYPTION", SeverityCritical},
		{"wpa only", "WPA", "TKIP", "WPA_ENCRYPTION", SeverityHigh},
		{"wpa2 tkip in security", "WPA2-TKIP", "", "WPA2_TKIP", SeverityMedium},
		{"wpa2 tkip in cipher", "WPA2-Personal", "TKIP", "WPA2_TKIP", SeverityMedium},
		{"wpa2 ccmp", "WPA2-Personal", "CCMP", "WPA2_PMKID", SeverityLow},
		{"mixed wpa wpa2", "WPA/WPA2", "CCMP", "WPA2_PMKID", SeverityLow},
		{"wpa3", "WPA3", "CCMP", "WPA3_GOOD", SeverityInfo},
	}

	s := NewScanner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := s.Analyze(wifi.NetworkInfo{
				BSSID:      "AA:BB:CC:DD:EE:FF",
				Security:   tt.security,
				Encryption: tt.encryption,
				Signal:     -60,
				Channel:    11,
			})

			require.NotEmpty(t, report.Vulnerabilities)
			assert.Equal(t, tt.wantID, report.Vulnerabilities[0].ID)
			assert.Equal(t, tt.wantSeverity, report.Vulnerabilities[0].Severity)
		})
	}
}

func TestScoreClamping(t *testing.T) {
	critical := Vulnerability{ID: "X", Severity: SeverityCritical}

	tests := []struct {
		criticals int
		want      int
	}{
		{1, 75},
		{2, 50},
		{4, 0},
		{5, 0},
	}
	for _, tt := range tests {
		r := NewReport("AA:BB:CC:DD:EE:FF", "x")
		for i := 0; i < tt.criticals; i++ {
			r.Add(critical)
		}
		assert.Equal(t, tt.want, r.Score, "%d criticals", tt.criticals)
		assert.GreaterOrEqual(t, r.Score, 0, "score never goes negative")
	}
}

func TestSeverityCountsExcludeInfo(t *testing.T) {
	s := NewScanner()
	report := s.Analyze(wifi.NetworkInfo{
		BSSID:    "AA:BB:CC:DD:EE:FF",
		Security: "WPA3",
		Signal:   -60,
		Channel:  3,
		Hidden:   true,
	})

	require.Len(t, report.Vulnerabilities, 3, "WPA3_GOOD, HIDDEN_SSID, CHANNEL_OVERLAP")
	named := report.Count(SeverityCritical) + report.Count(SeverityHigh) +
		report.Count(SeverityMedium) + report.Count(SeverityLow)
	assert.Zero(t, named)
	assert.LessOrEqual(t, named, len(report.Vulnerabilities))
	assert.Equal(t, 100, report.Score, "info findings carry no penalty")
}

func TestAnalyzeIdempotent(t *testing.T) {
	network := wifi.NetworkInfo{
		BSSID:    "AA:BB:CC:DD:EE:FF",
		Security: "WEP",
		Signal:   -25,
		Channel:  4,
		WPS:      true,
		Hidden:   true,
	}

	s := NewScanner()
	first := s.Analyze(network)
	second := s.Analyze(network)

	assert.Equal(t, findingIDs(first), findingIDs(second))
	assert.Equal(t, first.Score, second.Score)
}

func TestSignalThreshold(t *testing.T) {
	s := NewScanner()

	strong := s.Analyze(wifi.NetworkInfo{Security: "WPA3", Signal: -30, Channel: 1})
	assert.Contains(t, findingIDs(strong), "SIGNAL_TOO_STRONG")

	ok := s.Analyze(wifi.NetworkInfo{Security: "WPA3", Signal: -31, Channel: 1})
	assert.NotContains(t, findingIDs(ok), "SIGNAL_TOO_STRONG")
}

func TestChannelOverlap(t *testing.T) {
	tests := []struct {
		channel int
		flagged bool
	}{
		{1, false},
		{2, true},
		{3, true},
		{6, false},
		{10, true},
		{11, false},
		{36, false},
	}

	s := NewScanner()
	for _, tt := range tests {
		report := s.Analyze(wifi.NetworkInfo{Security: "WPA3", Signal: -60, Channel: tt.channel})
		if tt.flagged {
			assert.Contains(t, findingIDs(report), "CHANNEL_OVERLAP", "channel %d", tt.channel)
		} else {
			assert.NotContains(t, findingIDs(report), "CHANNEL_OVERLAP", "channel %d", tt.channel)
		}
	}
}

func TestRecommendationBands(t *testing.T) {
	s := NewScanner()

	poor := NewReport("AA:BB:CC:DD:EE:FF", "x")
	for i := 0; i < 3; i++ {
		poor.Add(Vulnerability{ID: "X", Severity: SeverityCritical})
	}
	buildRecommendations(poor)
	assert.Less(t, poor.Score, 50)
	assert.Contains(t, poor.Recommendations, "Network security is poor. Major improvements needed.")

	fair := s.Analyze(wifi.NetworkInfo{Security: "WPA", WPS: true, Signal: -60, Channel: 1})
	assert.Equal(t, 70, fair.Score)
	assert.Contains(t, fair.Recommendations, "Network security is fair. Some improvements recommended.")

	good := s.Analyze(wifi.NetworkInfo{Security: "WPA3", Signal: -60, Channel: 1})
	assert.Contains(t, good.Recommendations, "Network security is good. Monitor for changes.")

	for _, r := range []*Report{poor, fair, good} {
		assert.Contains(t, r.Recommendations, "Regularly update router firmware.")
		assert.Contains(t, r.Recommendations, "Use strong, unique passwords.")
		assert.Contains(t, r.Recommendations, "Enable network logging if available.")
	}
}

func TestScannerState(t *testing.T) {
	s := NewScanner()
	assert.Nil(t, s.LastReport())
	assert.False(t, s.Scanning())

	report := s.Analyze(wifi.NetworkInfo{BSSID: "AA:BB:CC:DD:EE:FF", Security: "WPA2"})
	assert.Same(t, report, s.LastReport())
	assert.False(t, s.Scanning())
}

func TestSeverityOrderingAndPenalties(t *testing.T) {
	assert.True(t, SeverityInfo < SeverityLow)
	assert.True(t, SeverityLow < SeverityMedium)
	assert.True(t, SeverityMedium < SeverityHigh)
	assert.True(t, SeverityHigh < SeverityCritical)

	assert.Equal(t, 0, SeverityInfo.Penalty())
	assert.Equal(t, 5, SeverityLow.Penalty())
	assert.Equal(t, 10, SeverityMedium.Penalty())
	assert.Equal(t, 15, SeverityHigh.Penalty())
	assert.Equal(t, 25, SeverityCritical.Penalty())

	assert.Equal(t, "critical", SeverityCritical.String())
	assert.Equal(t, "unknown", Severity(99).String())

	raw, err := json.Marshal(SeverityHigh)
	require.NoError(t, err)
	assert.Equal(t, `"high"`, string(raw))
}
