// ABOUTME: CLI command for importing vendor export files.
// ABOUTME: Upserts JSON record batches with a progress bar and error summary.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klmckay/healthdb/internal/ingest"
)

var importNoProgress bool

var importCmd = &cobra.Command{
	Use:   "import <vendor> <file>...",
	Short: "Import export files into a vendor store",
	Long: `Import JSON export files into a vendor store.

Each file holds an array of records tagged with their target table.
Records are upserted: re-importing the same file updates existing rows
instead of creating duplicates, so imports are safe to repeat.

Records that violate a constraint or fail validation are skipped and
reported; the rest of the batch still lands. A file that cannot be read
or parsed is skipped whole.

EXAMPLES:

  healthdb import garmin export/monitoring_2026-08.json
  healthdb import garmin export/*.json
  healthdb import fitbit fitbit_days.json --no-progress`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vendor := args[0]
		files := args[1:]

		_, db, err := openVendor(vendor, nil)
		if err != nil {
			return err
		}
		defer db.Close()

		importer := ingest.New(db)
		result, err := importer.ImportFiles(files, !importNoProgress)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported %d records from %d files (batch %s)",
			result.Records, result.Files, result.Batch)

		for _, ferr := range result.FileErrors {
			color.Yellow("  skipped file: %v", ferr)
		}
		for _, rerr := range result.RecordErrors {
			color.Yellow("  skipped record: %v", rerr)
		}

		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importNoProgress, "no-progress", false, "disable the progress bar")
	rootCmd.AddCommand(importCmd)
}
