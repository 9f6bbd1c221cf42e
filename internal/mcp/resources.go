// ABOUTME: MCP resource implementations for health store summaries.
// ABOUTME: Provides health://today and health://week resources per open store.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/klmckay/healthdb/internal/models"
)

func (s *Server) registerResources() {
	// health://today - today's stats across all open stores
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "health://today",
		Name:        "Today's Health Stats",
		Description: "Aggregated daily statistics for today from every open store",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// health://week - this week's stats across all open stores
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "health://week",
		Name:        "This Week's Health Stats",
		Description: "Aggregated weekly statistics for the current week from every open store",
		MIMEType:    "application/json",
	}, s.handleWeekResource)
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	today := models.Date(time.Now())

	perStore := make(map[string]map[string]string, len(s.stores))
	for name, st := range s.stores {
		bundle, err := st.DailyStats(today)
		if err != nil {
			return nil, fmt.Errorf("daily stats for %s: %w", name, err)
		}
		perStore[name] = renderBundle(bundle)
	}

	return resourceResult("health://today", map[string]any{
		"date":   today.Format(dateFormat),
		"stores": perStore,
	})
}

func (s *Server) handleWeekResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	// Week anchored on the most recent Monday.
	today := models.Date(time.Now())
	offset := (int(today.Weekday()) + 6) % 7
	firstDay := today.AddDate(0, 0, -offset)

	perStore := make(map[string]map[string]string, len(s.stores))
	for name, st := range s.stores {
		bundle, err := st.WeeklyStats(firstDay)
		if err != nil {
			return nil, fmt.Errorf("weekly stats for %s: %w", name, err)
		}
		perStore[name] = renderBundle(bundle)
	}

	return resourceResult("health://week", map[string]any{
		"first_day": firstDay.Format(dateFormat),
		"stores":    perStore,
	})
}

func resourceResult(uri string, payload map[string]any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
