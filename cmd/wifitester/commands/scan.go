package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/DiyarNzar/Wifi-tester-pro/cmd/wifitester/internal/format"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/driver"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

// newScanCommand performs one scan pass and prints the discovered networks.
func newScanCommand() *cobra.Command {
	var (
		ifaceName string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:     "scan",
		Short:   "Scan for nearby WiFi networks",
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
				added, updated := sess.RecordScan(ctx, iface, networks)

				if err := printNetworks(out, sess.Networks()); err != nil {
					return err
				}
				return out.PrintSummary(fmt.Sprintf("scan on %s: %d network(s), %d new, %d updated", iface, len(networks), added, updated))
			})
		},
	}

	cmd.Flags().StringVar(&ifaceName, "iface", "", "Interface to scan on (defaults to the first wireless interface)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override the scan timeout")

	return cmd
}

// filterNetworks applies the configured signal floor and result cap. The
// input is already sorted strongest-first by the driver.
func filterNetworks(networks []wifi.NetworkInfo, minSignal, limit int) []wifi.NetworkInfo {
	kept := make([]wifi.NetworkInfo, 0, len(networks))
	for _, n := range networks {
		if n.Signal < minSignal {
			continue
		}
		kept = append(kept, n)
		if limit > 0 && len(kept) >= limit {
			break
		}
	}
	return kept
}

func printNetworks(out format.Formatter, networks []wifi.NetworkInfo) error {
	if out.Mode() != format.ModeTable {
		return out.PrintStructured(networks)
	}

	rows := make([][]string, 0, len(networks))
	for _, n := range networks {
		wps := ""
		if n.WPS {
			wps = "wps"
		}
		rows = append(rows, []string{
			n.DisplayName(),
			n.BSSID,
			fmt.Sprintf("%d dBm", n.Signal),
			wifi.SignalQuality(n.Signal),
			strconv.Itoa(n.Channel),
			wifi.FrequencyBand(n.Frequency),
			n.Security,
			wps,
		})
	}
	return out.PrintTable([]string{"SSID", "BSSID", "Signal", "Quality", "Channel", "Band", "Security", "WPS"}, rows)
}
