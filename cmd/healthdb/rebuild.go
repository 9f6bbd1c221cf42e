// ABOUTME: CLI command for rebuilding tables and views.
// ABOUTME: Destructive recovery path when stored versions conflict with the code.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klmckay/healthdb/internal/store"
)

var rebuildAll bool

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <vendor> [table]",
	Short: "Drop and recreate tables or views",
	Long: `Drop and recreate a table, or the whole store, at the current code version.

THIS DELETES DATA. A rebuilt table comes back empty; re-import your
export files afterwards. Use it when a store reports a schema version
conflict and you want to move it to the version this build expects.

The store is opened without version checks so a conflicting store can
still be repaired.

EXAMPLES:

  healthdb rebuild garmin weight     # Recreate one table (drops its rows)
  healthdb rebuild garmin --all      # Recreate every table and view`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vendor := args[0]

		if rebuildAll == (len(args) == 2) {
			return fmt.Errorf("name a table to rebuild or pass --all, not both")
		}

		_, db, err := openVendor(vendor, &store.Options{SkipReconcile: true})
		if err != nil {
			return err
		}
		defer db.Close()

		if rebuildAll {
			if err := db.RebuildAll(); err != nil {
				return fmt.Errorf("rebuild failed: %w", err)
			}
			color.Green("✓ Rebuilt all tables and views in %s store", vendor)
			return nil
		}

		table := args[1]
		if err := db.Rebuild(table); err != nil {
			return fmt.Errorf("rebuild failed: %w", err)
		}
		color.Green("✓ Rebuilt table %s in %s store", table, vendor)
		return nil
	},
}

func init() {
	rebuildCmd.Flags().BoolVar(&rebuildAll, "all", false, "rebuild every table and view")
	rootCmd.AddCommand(rebuildCmd)
}
