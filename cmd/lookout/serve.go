package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/lookout/pkg/api"
	"github.com/cuemby/lookout/pkg/events"
	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
	"github.com/cuemby/lookout/pkg/monitor"
	"github.com/cuemby/lookout/pkg/probe"
	"github.com/cuemby/lookout/pkg/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API and host monitor",
	Long: `Run the Lookout server: the HTTP API, the websocket status stream and
the background monitor that probes every monitored link and widget server.

Monitoring follows configuration changes made through the admin API without a
restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := log.WithComponent("serve")
		metrics.SetVersion(Version)

		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		store, err := storage.NewBoltStore(cfg.DataDir)
		if err != nil {
			metrics.UpdateComponent(metrics.ComponentStorage, false, err.Error())
			return err
		}
		defer store.Close()
		metrics.UpdateComponent(metrics.ComponentStorage, true, "")
		fmt.Printf("✓ Store opened (%s)\n", cfg.DataDir)

		broker := events.NewBroker()
		broker.Start()
		defer broker.Stop()

		mon := monitor.NewMonitor(probe.NewDispatcher(cfg.ICMPPrivileged)).
			WithBroker(broker).
			WithTestTimeout(cfg.TestTimeout())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := mon.Start(ctx, store); err != nil {
			return err
		}
		defer mon.Stop()
		fmt.Printf("✓ Monitor started (%d targets)\n", len(mon.Targets()))

		server := api.NewServer(api.Config{
			Store:              store,
			Monitor:            mon,
			Broker:             broker,
			StatusPushInterval: cfg.StatusPushInterval(),
			ReadOnly:           cfg.ReadOnly,
		})

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(cfg.ListenAddr); err != nil {
				errCh <- fmt.Errorf("API server error: %w", err)
			}
		}()

		fmt.Printf("✓ API listening on %s\n", cfg.ListenAddr)
		fmt.Println()
		fmt.Println("Lookout is running. Press Ctrl+C to stop.")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		var runErr error
		select {
		case <-sigCh:
			fmt.Println("\nShutting down...")
		case runErr = <-errCh:
			logger.Error().Err(runErr).Msg("API server stopped")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("HTTP shutdown did not complete")
		}

		if runErr == nil {
			fmt.Println("✓ Shutdown complete")
		}
		return runErr
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().Bool("icmp-privileged", false, "Use raw ICMP sockets (needs CAP_NET_RAW)")
	serveCmd.Flags().Bool("read-only", false, "Reject admin API writes")
}
