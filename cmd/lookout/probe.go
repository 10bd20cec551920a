package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/lookout/pkg/monitor"
	"github.com/cuemby/lookout/pkg/probe"
	"github.com/cuemby/lookout/pkg/types"
)

var probeCmd = &cobra.Command{
	Use:   "probe HOST",
	Short: "Check a host once",
	Long: `Check a host once, the same way the admin "test host" action does.

Without --port the host is pinged over ICMP; with --port a TCP connection is
attempted. Nothing is stored.`,
	Example: `  lookout probe 192.168.1.1
  lookout probe nas.local --port 5000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(cmd); err != nil {
			return err
		}

		port, _ := cmd.Flags().GetInt("port")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		privileged, _ := cmd.Flags().GetBool("icmp-privileged")

		if port < 0 || port > 65535 {
			return fmt.Errorf("port must be between 0 (ICMP) and 65535")
		}

		mon := monitor.NewMonitor(probe.NewDispatcher(privileged)).WithTestTimeout(timeout)
		res := mon.TestHost(context.Background(), args[0], port)

		target := res.Host
		if res.Port != nil {
			target = fmt.Sprintf("%s:%d", res.Host, *res.Port)
		}

		if res.Status != types.HostOnline {
			fmt.Printf("✗ %s offline (%s): %s\n", target, res.Method, res.Error)
			return fmt.Errorf("host %s is offline", target)
		}

		fmt.Printf("✓ %s online (%s) %dms\n", target, res.Method, *res.LatencyMs)
		return nil
	},
}

func init() {
	probeCmd.Flags().IntP("port", "p", 0, "TCP port to connect to (ICMP when omitted)")
	probeCmd.Flags().Duration("timeout", 5*time.Second, "Probe timeout")
	probeCmd.Flags().Bool("icmp-privileged", false, "Use raw ICMP sockets (needs CAP_NET_RAW)")
}
