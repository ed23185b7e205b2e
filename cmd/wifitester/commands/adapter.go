package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DiyarNzar/Wifi-tester-pro/cmd/wifitester/internal/format"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/kali"
)

// newAdapterCommand exposes the aircrack-ng backed adapter helpers. These
// only work on security distributions with the toolchain installed; the
// commands degrade with an explanation elsewhere.
func newAdapterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "adapter",
		Short:   "Manage wireless adapters via the aircrack-ng toolchain",
		GroupID: "adapter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAdapterListCommand())
	cmd.AddCommand(newAdapterInjectionCommand())
	cmd.AddCommand(newAdapterSpoofCommand())
	cmd.AddCommand(newAdapterRestoreCommand())

	return cmd
}

func newAdapterListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List adapters known to airmon-ng",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd)

			manager := kali.NewManager()
			if !manager.Available() {
				return fmt.Errorf("aircrack-ng toolchain not available on this host")
			}

			adapters := manager.ListAdapters(cmd.Context())
			if len(adapters) == 0 {
				return out.PrintSummary("no adapters reported by airmon-ng")
			}

			if out.Mode() != format.ModeTable {
				return out.PrintStructured(adapters)
			}

			rows := make([][]string, 0, len(adapters))
			for _, a := range adapters {
				rows = append(rows, []string{
					a.Phy,
					a.Name,
					a.Driver,
					a.Chipset,
					a.MAC,
					boolMark(a.SupportsInjection),
				})
			}
			return out.PrintTable([]string{"PHY", "Interface", "Driver", "Chipset", "MAC", "Injection"}, rows)
		},
	}
}

func newAdapterInjectionCommand() *cobra.Command {
	var ifaceName string

	cmd := &cobra.Command{
		Use:   "test-injection",
		Short: "Test packet injection support on an interface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd)
			if ifaceName == "" {
				return fmt.Errorf("--iface is required")
			}

			manager := kali.NewManager()
			if !manager.Available() {
				return fmt.Errorf("aircrack-ng toolchain not available on this host")
			}

			if manager.TestInjection(cmd.Context(), ifaceName) {
				return out.PrintSummary(fmt.Sprintf("injection is working on %s", ifaceName))
			}
			return fmt.Errorf("injection test failed on %s", ifaceName)
		},
	}

	cmd.Flags().StringVar(&ifaceName, "iface", "", "Interface to test (must be in monitor mode)")

	return cmd
}

func newAdapterSpoofCommand() *cobra.Command {
	var (
		ifaceName string
		mac       string
	)

	cmd := &cobra.Command{
		Use:   "spoof-mac",
		Short: "Spoof the MAC address of an interface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd)
			if ifaceName == "" {
				return fmt.Errorf("--iface is required")
			}

			manager := kali.NewManager()
			if !manager.Available() {
				return fmt.Errorf("aircrack-ng toolchain not available on this host")
			}

			if result := manager.SpoofMAC(cmd.Context(), ifaceName, mac); !result.OK {
				return fmt.Errorf("spoof MAC on %s: %s", ifaceName, result.Reason)
			}
			if mac == "" {
				return out.PrintSummary(fmt.Sprintf("%s now uses a random MAC", ifaceName))
			}
			return out.PrintSummary(fmt.Sprintf("%s now uses MAC %s", ifaceName, mac))
		},
	}

	cmd.Flags().StringVar(&ifaceName, "iface", "", "Interface to spoof")
	cmd.Flags().StringVar(&mac, "mac", "", "Explicit MAC address (random when omitted)")

	return cmd
}

func newAdapterRestoreCommand() *cobra.Command {
	var ifaceName string

	cmd := &cobra.Command{
		Use:   "restore-mac",
		Short: "Restore the factory MAC address of an interface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd)
			if ifaceName == "" {
				return fmt.Errorf("--iface is required")
			}

			manager := kali.NewManager()
			if !manager.Available() {
				return fmt.Errorf("aircrack-ng toolchain not available on this host")
			}

			if result := manager.RestoreMAC(cmd.Context(), ifaceName); !result.OK {
				return fmt.Errorf("restore MAC on %s: %s", ifaceName, result.Reason)
			}
			return out.PrintSummary(fmt.Sprintf("%s restored to its permanent MAC", ifaceName))
		},
	}

	cmd.Flags().StringVar(&ifaceName, "iface", "", "Interface to restore")

	return cmd
}
