package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/DiyarNzar/Wifi-tester-pro/cmd/wifitester/internal/format"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/audit"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/driver"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

// newAuditCommand scans and scores networks against known weaknesses.
func newAuditCommand() *cobra.Command {
	var (
		ifaceName string
		bssid     string
		timeout   time.Duration
		minScore  int
	)

	cmd := &cobra.Command{
		Use:     "audit",
		Short:   "Scan and assess networks for security weaknesses",
		GroupID: "scan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd)
			cfg := currentConfig(cmd.Context())

			scanTimeout := timeout
			if scanTimeout <= 0 {
				scanTimeout = cfg.Scan.Timeout
			}

			return withDriver(cmd, func(ctx context.Context, drv driver.Driver) error {
				sess := currentSession(ctx)
				sess.SetInterfaces(drv.Interfaces(ctx))

				iface := ifaceName
				if iface == "" {
					iface = drv.CurrentInterface()
				}
				if iface == "" {
					return fmt.Errorf("no wireless interface available")
				}
				sess.BeginScan(ctx, iface)

				networks := drv.ScanNetworks(ctx, iface, scanTimeout)
				networks = filterNetworks(networks, cfg.Scan.MinSignal, cfg.Scan.MaxNetworks)
				sess.RecordScan(ctx, iface, networks)

				targets := networks
				if bssid != "" {
					n, ok := sess.Network(bssid)
					if !ok {
						return fmt.Errorf("network %s not found in scan results", bssid)
					}
					sess.Select(n.BSSID)
					targets = []wifi.NetworkInfo{n}
				}
				if len(targets) == 0 {
					return out.PrintSummary("no networks to audit")
				}

				scanner := audit.NewScanner()
				reports := make([]*audit.Report, 0, len(targets))
				for _, n := range targets {
					report := scanner.Analyze(n)
					sess.AddReport(ctx, report)
					reports = append(reports, report)
				}

				if out.Mode() != format.ModeTable {
					if err := out.PrintStructured(reports); err != nil {
						return err
					}
				} else {
					for i, report := range reports {
						if i > 0 {
							fmt.Fprintln(out.Stdout())
						}
						if err := format.RenderReport(out.Stdout(), report, out.Color()); err != nil {
							return err
						}
					}
				}

				worst := worstScore(reports)
				if err := out.PrintSummary(fmt.Sprintf("audited %d network(s), lowest score %d/100", len(reports), worst)); err != nil {
					return err
				}
				if minScore > 0 && worst < minScore {
					return fmt.Errorf("lowest security score %d is below the required minimum %d", worst, minScore)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&ifaceName, "iface", "", "Interface to scan on")
	cmd.Flags().StringVar(&bssid, "bssid", "", "Audit only the network with this BSSID")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override the scan timeout")
	cmd.Flags().IntVar(&minScore, "min-score", 0, "Fail when any audited network scores below this value")

	return cmd
}

func worstScore(reports []*audit.Report) int {
	worst := 100
	for _, r := range reports {
		if r.Score < worst {
			worst = r.Score
		}
	}
	return worst
}
