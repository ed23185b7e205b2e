package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/driver"
)

// newTxPowerCommand sets the transmit power of an interface.
func newTxPowerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "txpower",
		Short:   "Control interface transmit power",
		GroupID: "adapter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newTxPowerSetCommand())

	return cmd
}

func newTxPowerSetCommand() *cobra.Command {
	var ifaceName string

	cmd := &cobra.Command{
		Use:   "set <dbm>",
		Short: "Set transmit power in dBm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd)

			dbm, err := strconv.Atoi(args[0])
			if err != nil || dbm < 0 || dbm > 40 {
				return fmt.Errorf("invalid tx power %q (expected 0-40 dBm)", args[0])
			}

			return withDriver(cmd, func(ctx context.Context, drv driver.Driver) error {
				iface := resolveInterface(ctx, drv, ifaceName)
				if iface == "" {
					return fmt.Errorf("no wireless interface available")
				}

				if result := drv.SetTxPower(ctx, iface, dbm); !result.OK {
					return fmt.Errorf("set tx power %d dBm on %s: %s", dbm, iface, result.Reason)
				}
				return out.PrintSummary(fmt.Sprintf("%s tx power set to %d dBm", iface, dbm))
			})
		},
	}

	cmd.Flags().StringVar(&ifaceName, "iface", "", "Interface to adjust")

	return cmd
}
