// ABOUTME: Root Cobra command for healthdb CLI.
// ABOUTME: Wires Viper config and opens vendor stores for subcommands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/klmckay/healthdb/internal/config"
	"github.com/klmckay/healthdb/internal/fitbit"
	"github.com/klmckay/healthdb/internal/garmin"
	"github.com/klmckay/healthdb/internal/mcp"
	"github.com/klmckay/healthdb/internal/store"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "healthdb",
	Short: "Versioned store for wearable health data",
	Long: `Healthdb keeps health data from wearable vendors in local SQLite stores.

Each vendor (Garmin, FitBit) gets its own database file with versioned
tables and views. Records are upserted so re-importing the same export
files is safe, and schema versions are checked on every open.

QUICK START:

  $ healthdb import garmin export/*.json   # Load Garmin export files
  $ healthdb stats garmin daily            # Today's aggregated stats
  $ healthdb stats garmin weekly --date 2026-08-24
  $ healthdb view garmin device_info_view  # Read a derived view
  $ healthdb attr get garmin measurement_system

MCP INTEGRATION:

  Run 'healthdb mcp' to start the Model Context Protocol server for use
  with MCP-compatible AI assistants:

  {
    "mcpServers": {
      "healthdb": { "command": "healthdb", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Databases live under the data directory (default ~/.local/share/healthdb,
  override with --data-dir or HEALTHDB_DATA_DIR).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile); err != nil {
			return err
		}
		cfg = config.Load()
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/healthdb/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the vendor databases")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// openVendor opens the named vendor store. The returned mcp.Store exposes
// the stat and attribute surface; the *store.DB exposes raw store access.
func openVendor(vendor string, opts *store.Options) (mcp.Store, *store.DB, error) {
	switch vendor {
	case garmin.StoreName:
		g, err := garmin.Open(cfg.DataDir, opts)
		if err != nil {
			return nil, nil, err
		}
		return g, g.DB, nil
	case fitbit.StoreName:
		f, err := fitbit.Open(cfg.DataDir, opts)
		if err != nil {
			return nil, nil, err
		}
		return f, f.DB, nil
	default:
		return nil, nil, fmt.Errorf("unknown vendor %q (use %s or %s)", vendor, garmin.StoreName, fitbit.StoreName)
	}
}
