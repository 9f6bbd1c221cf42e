// ABOUTME: CLI command for reading derived views.
// ABOUTME: Lists view names or prints rows from a named view.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var viewLimit int

var viewCmd = &cobra.Command{
	Use:   "view <vendor> [name]",
	Short: "Read rows from a derived view",
	Long: `Read rows from a derived view in a vendor store.

Views are versioned read-only projections over the base tables, joined
and ordered ahead of time. With no view name, lists the views the store
defines.

EXAMPLES:

  healthdb view garmin                        # List available views
  healthdb view garmin device_info_view       # Show recent device info
  healthdb view garmin files_view -n 50       # Show up to 50 rows`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vendor := args[0]

		src, db, err := openVendor(vendor, nil)
		if err != nil {
			return err
		}
		defer db.Close()

		if len(args) == 1 {
			names := src.ViewNames()
			if len(names) == 0 {
				fmt.Println("No views defined.")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		}

		name := args[1]
		cols, rows, err := src.ViewRows(name, viewLimit)
		if err != nil {
			return fmt.Errorf("failed to read view: %w", err)
		}

		if len(rows) == 0 {
			fmt.Println("No rows.")
			return nil
		}

		faint := color.New(color.Faint)
		faint.Println(strings.Join(cols, "\t"))
		for _, row := range rows {
			values := make([]string, len(cols))
			for i, col := range cols {
				values[i] = row[col]
			}
			fmt.Println(strings.Join(values, "\t"))
		}

		return nil
	},
}

func init() {
	viewCmd.Flags().IntVarP(&viewLimit, "limit", "n", 20, "max number of rows")
	rootCmd.AddCommand(viewCmd)
}
