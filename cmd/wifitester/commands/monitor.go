package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/driver"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/workspace"
)

// newMonitorCommand toggles monitor mode on an interface. Transitions are
// serialized across processes with a per-adapter file lock so two runs
// cannot race the same interface.
func newMonitorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "monitor",
		Short:   "Enable or disable monitor mode",
		GroupID: "adapter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newMonitorToggleCommand("enable", true))
	cmd.AddCommand(newMonitorToggleCommand("disable", false))

	return cmd
}

func newMonitorToggleCommand(use string, enable bool) *cobra.Command {
	var ifaceName string

	short := "Disable monitor mode and restore managed mode"
	if enable {
		short = "Enable monitor mode on an interface"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd)

			return withDriver(cmd, func(ctx context.Context, drv driver.Driver) error {
				iface := ifaceName
				if iface == "" {
					drv.Interfaces(ctx)
					iface = drv.CurrentInterface()
				}
				if iface == "" {
					return fmt.Errorf("no wireless interface available")
				}

				unlock, err := lockAdapter(ctx, iface)
				if err != nil {
					return err
				}
				defer unlock()

				var result driver.OpResult
				if enable {
					result = drv.EnableMonitorMode(ctx, iface)
				} else {
					result = drv.DisableMonitorMode(ctx, iface)
				}
				if !result.OK {
					return out.PrintError(fmt.Errorf("monitor %s on %s: %s", use, iface, result.Reason))
				}

				currentSession(ctx).SetMonitorMode(ctx, drv.CurrentInterface(), enable)
				return out.PrintSummary(fmt.Sprintf("monitor mode %sd on %s (now %s)", use, iface, drv.CurrentInterface()))
			})
		},
	}

	cmd.Flags().StringVar(&ifaceName, "iface", "", "Interface to toggle (defaults to the current interface)")

	return cmd
}

// lockAdapter takes the per-interface lock under the workspace. Without a
// workspace the lock is skipped; the caller still gets a no-op unlock.
func lockAdapter(ctx context.Context, iface string) (func(), error) {
	root, ok := workspace.FromContext(ctx)
	if !ok {
		log.Debug().Str("iface", iface).Msg("no workspace; skipping adapter lock")
		return func() {}, nil
	}

	lock := workspace.AdapterLock(root, iface)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock adapter %s: %w", iface, err)
	}
	if !locked {
		return nil, fmt.Errorf("adapter %s is locked by another wifitester process", iface)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			log.Warn().Err(err).Str("iface", iface).Msg("release adapter lock")
		}
	}, nil
}
