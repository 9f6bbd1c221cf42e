// ABOUTME: CLI commands for the key-value attribute store.
// ABOUTME: Gets and sets timestamped attributes in a vendor store.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klmckay/healthdb/internal/store"
)

var attrCmd = &cobra.Command{
	Use:   "attr",
	Short: "Read and write store attributes",
	Long: `Read and write attributes in a vendor store.

Attributes are timestamped key-value pairs holding store metadata like
the measurement system or device identifiers.

EXAMPLES:

  healthdb attr get garmin measurement_system
  healthdb attr set garmin measurement_system metric
  healthdb attr set fitbit timezone America/Chicago`,
}

var attrGetCmd = &cobra.Command{
	Use:   "get <vendor> <key>",
	Short: "Read an attribute value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vendor, key := args[0], args[1]

		src, db, err := openVendor(vendor, nil)
		if err != nil {
			return err
		}
		defer db.Close()

		value, err := src.Attrs().Get(key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("attribute %q not set", key)
			}
			return fmt.Errorf("failed to read attribute: %w", err)
		}

		fmt.Println(value)
		return nil
	},
}

var attrSetCmd = &cobra.Command{
	Use:   "set <vendor> <key> <value>",
	Short: "Write an attribute value",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		vendor, key, value := args[0], args[1], args[2]

		src, db, err := openVendor(vendor, nil)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := src.Attrs().Set(key, value); err != nil {
			return fmt.Errorf("failed to set attribute: %w", err)
		}

		color.Green("✓ %s = %s", key, value)
		return nil
	},
}

func init() {
	attrCmd.AddCommand(attrGetCmd)
	attrCmd.AddCommand(attrSetCmd)
	rootCmd.AddCommand(attrCmd)
}
