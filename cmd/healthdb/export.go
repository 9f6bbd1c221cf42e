// ABOUTME: CLI command for exporting a vendor store as JSON.
// ABOUTME: Dumps every table's rows for backup or inspection.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <vendor>",
	Short: "Export a vendor store as JSON",
	Long: `Export every table of a vendor store as JSON.

The dump includes the store name and version, so a reader can tell
which schema the rows were written under. Views are derived and are
not exported.

EXAMPLES:

  healthdb export garmin                  # Dump to stdout
  healthdb export garmin -o garmin.json   # Save to file`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vendor := args[0]

		_, db, err := openVendor(vendor, nil)
		if err != nil {
			return err
		}
		defer db.Close()

		if exportOutput == "" {
			return db.Export(os.Stdout)
		}

		var buf bytes.Buffer
		if err := db.Export(&buf); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if err := os.WriteFile(exportOutput, buf.Bytes(), 0600); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}

		color.Green("✓ Exported to %s", exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}
