// Package commands wires the wifitester CLI: global flags, config and
// workspace lifecycle, and the per-area subcommands.
package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/DiyarNzar/Wifi-tester-pro/cmd/wifitester/internal/format"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/appctx"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/config"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/driver"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/event"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/logging"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/session"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/workspace"

	// Platform drivers self-register on import.
	_ "github.com/DiyarNzar/Wifi-tester-pro/pkg/driver/iw"
	_ "github.com/DiyarNzar/Wifi-tester-pro/pkg/driver/netsh"
)

const cliExecutable = "wifitester"

// NewCommand constructs the top-level wifitester CLI command, wiring global
// flags, configuration loading, logging, and shared workspace preparation.
func NewCommand() *cobra.Command {
	var (
		configFile        string
		workspaceDir      string
		workspaceDisabled bool
		outputMode        string
		quiet             bool
		noColor           bool
		verbosityCount    int
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "wifitester audits nearby WiFi networks for weak security",
		Long: `wifitester enumerates wireless interfaces, scans for access points with
the host's native tooling, and scores each network against known
weaknesses (open auth, WEP, WPS, weak ciphers).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := format.ValidateMode(outputMode); err != nil {
				return err
			}

			manager := config.NewManager()
			if err := manager.Load(cmd.Flags(), configFile); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if err := manager.Validate(); err != nil {
				return fmt.Errorf("validate configuration: %w", err)
			}

			cfg := manager.Get()
			level := cfg.Log.Level
			if verbosityCount > 0 {
				level = "debug"
			}
			logging.Setup(level, cfg.Log.Format, noColor || cfg.Log.NoColor)

			ctx := appctx.WithConfig(cmd.Context(), manager)

			if !workspaceDisabled {
				prepared, err := workspace.Prepare(workspaceDir)
				if err != nil {
					return fmt.Errorf("prepare workspace: %w", err)
				}
				ctx = workspace.WithContext(ctx, prepared)
				log.Debug().Str("workspace", prepared).Msg("workspace ready")
			} else {
				log.Debug().Msg("workspace disabled for this run")
			}

			sess := session.New(event.New())
			ctx = appctx.WithSession(ctx, sess)

			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
	}

	cmd.SilenceUsage = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().StringVar(&workspaceDir, "workspace-dir", "", "Override workspace root directory")
	cmd.PersistentFlags().BoolVar(&workspaceDisabled, "no-workspace", false, "Disable workspace persistence for this run")
	cmd.PersistentFlags().StringVarP(&outputMode, "output", "o", "table", "Output format: table, json or yaml")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress summary output")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().CountVarP(&verbosityCount, "verbosity", "v", "Increase logging verbosity (repeatable)")

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddGroup(&cobra.Group{ID: "scan", Title: "Scan Commands"})
	cmd.AddGroup(&cobra.Group{ID: "adapter", Title: "Adapter Commands"})
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands"})

	cmd.AddCommand(newInterfacesCommand())
	cmd.AddCommand(newScanCommand())
	cmd.AddCommand(newAuditCommand())
	cmd.AddCommand(newWatchCommand())
	cmd.AddCommand(newMonitorCommand())
	cmd.AddCommand(newChannelCommand())
	cmd.AddCommand(newTxPowerCommand())
	cmd.AddCommand(newAdapterCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// newFormatter derives a Formatter from the persistent flags of cmd.
func newFormatter(cmd *cobra.Command) format.Formatter {
	mode, _ := cmd.Flags().GetString("output")
	quiet, _ := cmd.Flags().GetBool("quiet")
	noColor, _ := cmd.Flags().GetBool("no-color")
	return format.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), format.ParseMode(mode), quiet, !noColor)
}

// withDriver runs fn against the host platform driver, guaranteeing Cleanup
// even when fn fails.
func withDriver(cmd *cobra.Command, fn func(ctx context.Context, drv driver.Driver) error) error {
	ctx := cmd.Context()
	drv, err := driver.NewForHost()
	if err != nil {
		return err
	}
	if !drv.Initialize(ctx) {
		log.Warn().Str("platform", drv.Platform()).Msg("driver initialized in degraded mode; some operations may be unavailable")
	}
	defer drv.Cleanup(ctx)
	return fn(ctx, drv)
}

// currentConfig returns the loaded configuration, or defaults when the
// command runs without a config manager in context (tests).
func currentConfig(ctx context.Context) config.Config {
	if manager, ok := appctx.Config(ctx); ok {
		return manager.Get()
	}
	return config.DefaultConfig()
}

// currentSession returns the session from context, creating a detached one
// as a fallback so commands never nil-check.
func currentSession(ctx context.Context) *session.Session {
	if sess, ok := appctx.Session(ctx); ok {
		return sess
	}
	return session.New(event.New())
}
