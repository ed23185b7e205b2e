package audit

import "encoding/json"

// Severity ranks findings from informational to critical. The numeric
// order is meaningful: higher values are more severe.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{"info", "low", "medium", "high", "critical"}

// severityPenalties maps a severity to the score deduction it causes.
var severityPenalties = [...]int{0, 5, 10, 15, 25}

// String returns the lowercase label for the severity.
func (s Severity) String() string {
	if s < SeverityInfo || s > SeverityCritical {
		return "unknown"
	}
	return severityNames[s]
}

// Penalty returns the number of points this severity subtracts from a
// report's security score.
func (s Severity) Penalty() int {
	if s < SeverityInfo || s > SeverityCritical {
		return 0
	}
	return severityPenalties[s]
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}
