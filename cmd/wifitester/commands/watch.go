package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/appctx"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/config"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/driver"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/engine"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/event"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/session"
	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

// newWatchCommand scans continuously, printing networks as they appear and
// change, until interrupted.
func newWatchCommand() *cobra.Command {
	var (
		ifaceName string
		interval  time.Duration
	)

	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Continuously scan and report network changes",
		GroupID: "scan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(cmd)
			cfg := currentConfig(cmd.Context())

			passInterval := interval
			if passInterval <= 0 {
				passInterval = cfg.Scan.Interval
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

				// Detach from the bus on exit so a final RecordScan in a
				// draining task cannot write to a closed command stream.
				foundSub := sess.Bus().Subscribe(event.TopicNetworkFound, func(_ context.Context, data any) {
					if n, ok := data.(wifi.NetworkInfo); ok {
						fmt.Fprintf(out.Stdout(), "+ %-28s %s  %d dBm  ch %-3d %s\n",
							n.DisplayName(), n.BSSID, n.Signal, n.Channel, n.Security)
					}
				})
				defer sess.Bus().Unsubscribe(foundSub)
				passSub := sess.Bus().Subscribe(event.TopicScanCompleted, func(_ context.Context, data any) {
					if ev, ok := data.(session.ScanEvent); ok {
						log.Debug().Str("iface", ev.Interface).Int("count", ev.Count).Int("total", ev.Total).Msg("scan pass done")
					}
				})
				defer sess.Bus().Unsubscribe(passSub)

				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				// Hot-reload scan settings while the loop runs.
				if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
					if manager, ok := appctx.Config(ctx); ok {
						watcher, err := config.NewWatcher(manager, configFile)
						if err != nil {
							log.Warn().Err(err).Msg("config watcher unavailable")
						} else {
							go func() {
								if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
									log.Warn().Err(err).Msg("config watcher stopped")
								}
							}()
						}
					}
				}

				// One worker keeps scan passes serialized on the adapter.
				eng := engine.New(1)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := eng.Shutdown(shutdownCtx); err != nil {
						log.Warn().Err(err).Msg("engine shutdown")
					}
				}()

				if err := out.PrintSummary(fmt.Sprintf("watching %s every %s, ctrl-c to stop", iface, passInterval)); err != nil {
					return err
				}

				limiter := rate.NewLimiter(rate.Every(passInterval), 1)
				for {
					if err := limiter.Wait(ctx); err != nil {
						// Interrupted; print the final tally and leave.
						stats := sess.Stats()
						return out.PrintSummary(fmt.Sprintf("stopped: %d scan(s), %d network(s) seen, %d open, %d hidden",
							stats.Scans, stats.Networks, stats.Open, stats.Hidden))
					}

					_, err := eng.Submit("scan-pass", engine.Params{"iface": iface},
						func(taskCtx context.Context, params engine.Params) (any, error) {
							target := params.String("iface", iface)
							// Re-read config each pass so hot reloads apply.
							scanCfg := currentConfig(ctx).Scan
							sess.BeginScan(taskCtx, target)
							networks := drv.ScanNetworks(taskCtx, target, scanCfg.Timeout)
							networks = filterNetworks(networks, scanCfg.MinSignal, scanCfg.MaxNetworks)
							added, updated := sess.RecordScan(taskCtx, target, networks)
							return session.ScanEvent{Interface: target, Count: added + updated, Total: len(networks)}, nil
						},
						nil, nil)
					switch {
					case errors.Is(err, engine.ErrQueueFull):
						log.Debug().Msg("previous scan passes still pending; skipping tick")
					case errors.Is(err, engine.ErrShutdown):
						return nil
					case err != nil:
						return err
					}
				}
			})
		},
	}

	cmd.Flags().StringVar(&ifaceName, "iface", "", "Interface to watch")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Time between scan passes")

	return cmd
}
