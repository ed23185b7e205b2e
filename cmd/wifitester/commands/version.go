package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DiyarNzar/Wifi-tester-pro/cmd/wifitester/internal/format"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version information",
		GroupID: "core",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd)
			if out.Mode() != format.ModeTable {
				return out.PrintStructured(version.Get())
			}
			_, err := fmt.Fprintln(out.Stdout(), version.Info())
			return err
		},
	}
}
