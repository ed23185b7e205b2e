package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/DiyarNzar/Wifi-tester-pro/cmd/wifitester/internal/format"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/driver"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/netdiag"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

// newStatusCommand reports the live association state and, when possible,
// the quality of the path to the default gateway.
func newStatusCommand() *cobra.Command {
	var skipProbe bool

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Show the current connection and link quality",
		GroupID: "core",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd)

			return withDriver(cmd, func(ctx context.Context, drv driver.Driver) error {
				conn := drv.CurrentConnection(ctx)

				var probe *netdiag.Result
				if !skipProbe {
					result, err := netdiag.NewProber().Probe(ctx)
					switch {
					case errors.Is(err, netdiag.ErrUnsupported):
						log.Debug().Msg("gateway probe not supported on this platform")
					case err != nil:
						log.Warn().Err(err).Msg("gateway probe failed")
					default:
						probe = result
					}
				}

				if out.Mode() != format.ModeTable {
					return out.PrintStructured(map[string]any{
						"connected": conn != nil,
						"network":   conn,
						"gateway":   probe,
					})
				}

				if conn == nil {
					if err := out.PrintSummary("not connected"); err != nil {
						return err
					}
				} else {
					_, err := fmt.Fprintf(out.Stdout(), "connected to %s (%s), channel %d, %d dBm (%s), %s\n",
						conn.DisplayName(), conn.BSSID, conn.Channel, conn.Signal, wifi.SignalQuality(conn.Signal), conn.Security)
					if err != nil {
						return err
					}
				}

				if probe != nil {
					_, err := fmt.Fprintf(out.Stdout(), "gateway %s: %d/%d replies, %.0f%% loss, avg rtt %s (%s)\n",
						probe.Gateway, probe.Received, probe.Sent, probe.Loss, probe.AvgRTT, probe.Quality)
					if err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipProbe, "no-probe", false, "Skip the gateway reachability probe")

	return cmd
}
