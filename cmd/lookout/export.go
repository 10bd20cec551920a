package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/lookout/pkg/storage"
	"github.com/cuemby/lookout/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the dashboard configuration as JSON",
	Long: `Export settings, categories, links and widgets as a JSON document that
can be restored with "lookout import".

The data directory must not be in use by a running server.`,
	Example: `  lookout export -o backup.json
  lookout export --data-dir /var/lib/lookout > backup.json`,
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

		doc, err := store.Export()
		if err != nil {
			return fmt.Errorf("failed to export configuration: %w", err)
		}

		output, _ := cmd.Flags().GetString("output")
		var w io.Writer = os.Stdout
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to write configuration: %w", err)
		}

		if w != os.Stdout {
			fmt.Printf("✓ Exported %d categories, %d links and %d widgets to %s\n",
				len(doc.Categories), len(doc.Links), len(doc.Widgets), output)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the dashboard configuration with a JSON document",
	Long: `Replace the whole stored configuration with a document produced by
"lookout export". The document is validated before anything is replaced.

The data directory must not be in use by a running server; use the admin API
import endpoint to update a live instance.`,
	Example: `  lookout import -f backup.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return fmt.Errorf("--file is required")
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		var doc types.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", file, err)
		}

		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		store, err := storage.NewBoltStore(cfg.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Import(&doc); err != nil {
			return fmt.Errorf("failed to import configuration: %w", err)
		}

		fmt.Printf("✓ Imported %d categories, %d links and %d widgets\n",
			len(doc.Categories), len(doc.Links), len(doc.Widgets))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file (stdout when omitted)")
	importCmd.Flags().StringP("file", "f", "", "Document to import")
}
