package audit

import (
	"time"
)

// Vulnerability is a single finding against a network. Values are
// immutable once constructed.
type Vulnerability struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description" yaml:"description"`
	Severity       Severity `json:"severity" yaml:"severity"`
	Category       string   `json:"category" yaml:"category"`
	CVE            string   `json:"cve,omitempty" yaml:"cve,omitempty"`
	Recommendation string   `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
}

// Report accumulates findings for one network. The security score starts
// at 100 and only decreases as vulnerabilities are added, clamped at 0.
type Report struct {
	BSSID           string          `json:"bssid" yaml:"bssid"`
	SSID            string          `json:"ssid" yaml:"ssid"`
	StartedAt       time.Time       `json:"started_at" yaml:"started_at"`
	CompletedAt     time.Time       `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities" yaml:"vulnerabilities"`
	Score           int             `json:"security_score" yaml:"security_score"`
	Recommendations []string        `json:"recommendations" yaml:"recommendations"`
}

// NewReport returns an empty report for the given target with a full
// security score.
func NewReport(bssid, ssid string) *Report {
	return &Report{
		BSSID:     bssid,
		SSID:      ssid,
		StartedAt: time.Now(),
		Score:     100,
	}
}

// Add appends a vulnerability and applies its severity penalty to the
// score. Findings keep insertion order.
func (r *Report) Add(v Vulnerability) {
	r.Vulnerabilities = append(r.Vulnerabilities, v)
	r.Score -= v.Severity.Penalty()
	if r.Score < 0 {
		r.Score = 0
	}
}

// Count returns how many findings carry the given severity.
func (r *Report) Count(s Severity) int {
	n := 0
	for _, v := range r.Vulnerabilities {
		if v.Severity == s {
			n++
		}
	}
	return n
}
