package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/DiyarNzar/Wifi-tester-pro/cmd/wifitester/internal/format"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/driver"
)

// newInterfacesCommand lists the wireless interfaces visible to the host
// platform driver.
func newInterfacesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "interfaces",
		Aliases: []string{"ifaces", "if"},
		Short:   "List wireless interfaces",
		GroupID: "core",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd)

			return withDriver(cmd, func(ctx context.Context, drv driver.Driver) error {
				ifaces := drv.Interfaces(ctx)
				currentSession(ctx).SetInterfaces(ifaces)

				if len(ifaces) == 0 {
					return out.PrintSummary("no wireless interfaces found")
				}

				if out.Mode() != format.ModeTable {
					return out.PrintStructured(ifaces)
				}

				rows := make([][]string, 0, len(ifaces))
				for _, iface := range ifaces {
					channel := "-"
					if iface.Channel > 0 {
						channel = strconv.Itoa(iface.Channel)
					}
					rows = append(rows, []string{
						iface.Name,
						iface.MAC,
						string(iface.Mode),
						channel,
						boolMark(iface.IsUp),
						boolMark(iface.SupportsMonitor),
					})
				}
				if err := out.PrintTable([]string{"Name", "MAC", "Mode", "Channel", "Up", "Monitor"}, rows); err != nil {
					return err
				}
				return out.PrintSummary(fmt.Sprintf("%d interface(s), current: %s", len(ifaces), drv.CurrentInterface()))
			})
		},
	}

	return cmd
}

func boolMark(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
