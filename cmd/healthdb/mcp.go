// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Serves open vendor stores over stdio for AI assistants.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/klmckay/healthdb/internal/fitbit"
	"github.com/klmckay/healthdb/internal/garmin"
	"github.com/klmckay/healthdb/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and exposes every vendor store
whose database file exists under the data directory.

CONFIGURATION:

  {
    "mcpServers": {
      "healthdb": {
        "command": "healthdb",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  get_stats       Daily, weekly, monthly, or range statistics
  get_attribute   Read a store attribute
  set_attribute   Write a store attribute
  query_view      Read rows from a derived view

AVAILABLE RESOURCES:

  health://today  Today's stats across all stores
  health://week   This week's stats across all stores`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var stores []mcp.Store

		for _, vendor := range []string{garmin.StoreName, fitbit.StoreName} {
			src, db, err := openVendor(vendor, nil)
			if err != nil {
				return fmt.Errorf("failed to open %s store: %w", vendor, err)
			}
			defer db.Close()
			stores = append(stores, src)
		}

		server, err := mcp.NewServer(stores...)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
