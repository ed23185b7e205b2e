package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/DiyarNzar/Wifi-tester-pro/cmd/wifitester/internal/format"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/driver"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

// newChannelCommand reads or tunes the channel of an interface.
func newChannelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "channel",
		Short:   "Get or set the channel of an interface",
		GroupID: "adapter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newChannelGetCommand())
	cmd.AddCommand(newChannelSetCommand())

	return cmd
}

func newChannelGetCommand() *cobra.Command {
	var ifaceName string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the current channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd)

			return withDriver(cmd, func(ctx context.Context, drv driver.Driver) error {
				iface := resolveInterface(ctx, drv, ifaceName)
				if iface == "" {
					return fmt.Errorf("no wireless interface available")
				}

				channel, ok := drv.Channel(ctx, iface)
				if !ok {
					return fmt.Errorf("channel of %s could not be determined", iface)
				}

				if out.Mode() != format.ModeTable {
					return out.PrintStructured(map[string]any{
						"iface":     iface,
						"channel":   channel,
						"frequency": wifi.FrequencyFromChannel(channel),
					})
				}
				_, err := fmt.Fprintf(out.Stdout(), "%s: channel %d (%d MHz)\n", iface, channel, wifi.FrequencyFromChannel(channel))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&ifaceName, "iface", "", "Interface to query")

	return cmd
}

func newChannelSetCommand() *cobra.Command {
	var ifaceName string

	cmd := &cobra.Command{
		Use:   "set <channel>",
		Short: "Tune the interface to a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd)

			channel, err := strconv.Atoi(args[0])
			if err != nil || channel < 1 || channel > 196 {
				return fmt.Errorf("invalid channel %q", args[0])
			}

			return withDriver(cmd, func(ctx context.Context, drv driver.Driver) error {
				iface := resolveInterface(ctx, drv, ifaceName)
				if iface == "" {
					return fmt.Errorf("no wireless interface available")
				}

				if result := drv.SetChannel(ctx, iface, channel); !result.OK {
					return fmt.Errorf("set channel %d on %s: %s", channel, iface, result.Reason)
				}
				return out.PrintSummary(fmt.Sprintf("%s tuned to channel %d", iface, channel))
			})
		},
	}

	cmd.Flags().StringVar(&ifaceName, "iface", "", "Interface to tune")

	return cmd
}

// resolveInterface picks the explicit interface or falls back to the
// driver's current one, enumerating first if needed.
func resolveInterface(ctx context.Context, drv driver.Driver, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cur := drv.CurrentInterface(); cur != "" {
		return cur
	}
	drv.Interfaces(ctx)
	return drv.CurrentInterface()
}
