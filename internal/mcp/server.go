// ABOUTME: MCP server exposing the health stores to AI assistants.
// ABOUTME: Wraps stat rollups, attributes, and views behind stdio transport.
package mcp

import (
	"context"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/klmckay/healthdb/internal/rollup"
	"github.com/klmckay/healthdb/internal/store"
)

// Store is the per-vendor surface the server exposes.
type Store interface {
	rollup.Source
	Name() string
	ViewNames() []string
	ViewRows(name string, limit int) ([]string, []map[string]string, error)
	Attrs() *store.Attributes
}

// Server wraps the MCP server with one or more open vendor stores.
type Server struct {
	mcpServer *mcp.Server
	stores    map[string]Store
}

// NewServer creates an MCP server over the given stores.
func NewServer(stores ...Store) (*Server, error) {
	if len(stores) == 0 {
		return nil, fmt.Errorf("no stores to serve")
	}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "healthdb",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		stores:    make(map[string]Store, len(stores)),
	}
	for _, st := range stores {
		s.stores[st.Name()] = st
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) store(vendor string) (Store, error) {
	if vendor == "" && len(s.stores) == 1 {
		for _, st := range s.stores {
			return st, nil
		}
	}
	st, ok := s.stores[vendor]
	if !ok {
		return nil, fmt.Errorf("unknown vendor %q (have: %v)", vendor, s.vendorNames())
	}
	return st, nil
}

func (s *Server) vendorNames() []string {
	names := make([]string, 0, len(s.stores))
	for n := range s.stores {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
