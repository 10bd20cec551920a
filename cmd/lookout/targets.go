package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cuemby/lookout/pkg/resolver"
	"github.com/cuemby/lookout/pkg/storage"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the hosts the monitor would check",
	Long: `Resolve the stored configuration into monitor targets and print them
without probing anything. Useful to see which links and widget servers are
monitored and with which interval, timeout and retries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		store, err := storage.NewBoltStore(cfg.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		snapshot, err := store.Snapshot(context.Background())
		if err != nil {
			return err
		}

		targets := resolver.NewResolver().Resolve(snapshot)
		if len(targets) == 0 {
			fmt.Println("No monitored hosts")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tHOST\tPORT\tINTERVAL\tTIMEOUT\tRETRIES")
		for _, t := range targets {
			port := "icmp"
			if t.Port > 0 {
				port = fmt.Sprintf("%d", t.Port)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
				t.ID, t.Name, t.Host, port, t.Interval, t.Timeout, t.Retries)
		}
		return w.Flush()
	},
}
