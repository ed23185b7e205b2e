package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/audit"
)

var severityStyles = map[audit.Severity]lipgloss.Style{
	audit.SeverityInfo:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	audit.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	audit.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	audit.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	audit.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

var scoreStyles = []struct {
	min   int
	style lipgloss.Style
}{
	{80, lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)},
	{50, lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)},
	{0, lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)},
}

// SeverityBadge renders a fixed-width, upper-case severity label, colored
// when enabled.
func SeverityBadge(s audit.Severity, colored bool) string {
	label := fmt.Sprintf("%-8s", strings.ToUpper(s.String()))
	if !colored {
		return label
	}
	if style, ok := severityStyles[s]; ok {
		return style.Render(label)
	}
	return label
}

func scoreBadge(score int, colored bool) string {
	label := fmt.Sprintf("%d/100", score)
	if !colored {
		return label
	}
	for _, bucket := range scoreStyles {
		if score >= bucket.min {
			return bucket.style.Render(label)
		}
	}
	return label
}

// RenderReport writes one audit report in human-readable form. Machine
// modes should marshal the report directly instead.
func RenderReport(w io.Writer, r *audit.Report, colored bool) error {
	header := fmt.Sprintf("%s (%s)", r.SSID, r.BSSID)
	if strings.TrimSpace(r.SSID) == "" {
		header = r.BSSID
	}
	if colored {
		header = lipgloss.NewStyle().Bold(true).Render(header)
	}

	if _, err := fmt.Fprintf(w, "%s  score %s\n", header, scoreBadge(r.Score, colored)); err != nil {
		return err
	}

	if len(r.Vulnerabilities) == 0 {
		_, err := fmt.Fprintln(w, "  no findings")
		return err
	}

	for _, v := range r.Vulnerabilities {
		if _, err := fmt.Fprintf(w, "  %s %s  %s\n", SeverityBadge(v.Severity, colored), v.ID, v.Name); err != nil {
			return err
		}
		if v.Description != "" {
			if _, err := fmt.Fprintf(w, "           %s\n", v.Description); err != nil {
				return err
			}
		}
	}

	if len(r.Recommendations) > 0 {
		if _, err := fmt.Fprintln(w, "  recommendations:"); err != nil {
			return err
		}
		for _, rec := range r.Recommendations {
			if _, err := fmt.Fprintf(w, "    - %s\n", rec); err != nil {
				return err
			}
		}
	}

	return nil
}
