// ABOUTME: MCP tool registration and handlers for stats, attributes, and views.
// ABOUTME: Renders stat bundles as plain string maps for schema-friendly output.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/klmckay/healthdb/internal/models"
	"github.com/klmckay/healthdb/internal/rollup"
	"github.com/klmckay/healthdb/internal/store"
)

const dateFormat = "2006-01-02"

// GetStatsInput is the input for the get_stats tool.
type GetStatsInput struct {
	Vendor string `json:"vendor,omitempty" jsonschema:"vendor store to query (e.g. garmin, fitbit); optional when only one store is open"`
	Window string `json:"window" jsonschema:"aggregation window: daily, weekly, monthly, or range"`
	Date   string `json:"date,omitempty" jsonschema:"anchor date in YYYY-MM-DD format; day for daily, first day for weekly/monthly"`
	Start  string `json:"start,omitempty" jsonschema:"range start date (YYYY-MM-DD, inclusive); required for window=range"`
	End    string `json:"end,omitempty" jsonschema:"range end date (YYYY-MM-DD, exclusive); required for window=range"`
}

// GetStatsOutput is the output for the get_stats tool.
type GetStatsOutput struct {
	Vendor string            `json:"vendor"`
	Window string            `json:"window"`
	Stats  map[string]string `json:"stats"`
}

// GetAttributeInput is the input for the get_attribute tool.
type GetAttributeInput struct {
	Vendor string `json:"vendor,omitempty" jsonschema:"vendor store to query; optional when only one store is open"`
	Key    string `json:"key" jsonschema:"attribute key to read"`
}

// GetAttributeOutput is the output for the get_attribute tool.
type GetAttributeOutput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SetAttributeInput is the input for the set_attribute tool.
type SetAttributeInput struct {
	Vendor string `json:"vendor,omitempty" jsonschema:"vendor store to update; optional when only one store is open"`
	Key    string `json:"key" jsonschema:"attribute key to write"`
	Value  string `json:"value" jsonschema:"attribute value to store"`
}

// SetAttributeOutput is the output for the set_attribute tool.
type SetAttributeOutput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// QueryViewInput is the input for the query_view tool.
type QueryViewInput struct {
	Vendor string `json:"vendor,omitempty" jsonschema:"vendor store to query; optional when only one store is open"`
	View   string `json:"view" jsonschema:"view name to read rows from"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum rows to return (default 20)"`
}

// QueryViewOutput is the output for the query_view tool.
type QueryViewOutput struct {
	View    string              `json:"view"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer,
		&mcp.Tool{
			Name:        "get_stats",
			Description: "Get aggregated health statistics for a daily, weekly, monthly, or custom date window. Returns steps, weight, sleep, stress, heart rate, calories, and goal percentages where the store has data.",
		},
		s.handleGetStats,
	)

	mcp.AddTool(s.mcpServer,
		&mcp.Tool{
			Name:        "get_attribute",
			Description: "Read a stored attribute (e.g. measurement system, device identifiers) from a vendor store.",
		},
		s.handleGetAttribute,
	)

	mcp.AddTool(s.mcpServer,
		&mcp.Tool{
			Name:        "set_attribute",
			Description: "Write an attribute value into a vendor store, stamped with the current time.",
		},
		s.handleSetAttribute,
	)

	mcp.AddTool(s.mcpServer,
		&mcp.Tool{
			Name:        "query_view",
			Description: "Read rows from a derived view (e.g. device_info_view, files_view) in a vendor store.",
		},
		s.handleQueryView,
	)
}

func (s *Server) handleGetStats(ctx context.Context, req *mcp.CallToolRequest, input GetStatsInput) (*mcp.CallToolResult, GetStatsOutput, error) {
	st, err := s.store(input.Vendor)
	if err != nil {
		return nil, GetStatsOutput{}, err
	}

	var bundle rollup.Bundle
	switch input.Window {
	case "daily":
		day, err := parseDate(input.Date, "date")
		if err != nil {
			return nil, GetStatsOutput{}, err
		}
		bundle, err = st.DailyStats(day)
		if err != nil {
			return nil, GetStatsOutput{}, fmt.Errorf("daily stats: %w", err)
		}
	case "weekly":
		firstDay, err := parseDate(input.Date, "date")
		if err != nil {
			return nil, GetStatsOutput{}, err
		}
		bundle, err = st.WeeklyStats(firstDay)
		if err != nil {
			return nil, GetStatsOutput{}, fmt.Errorf("weekly stats: %w", err)
		}
	case "monthly":
		anchor, err := parseDate(input.Date, "date")
		if err != nil {
			return nil, GetStatsOutput{}, err
		}
		first, last := monthBounds(anchor)
		bundle, err = st.MonthlyStats(first, last)
		if err != nil {
			return nil, GetStatsOutput{}, fmt.Errorf("monthly stats: %w", err)
		}
	case "range":
		start, err := parseDate(input.Start, "start")
		if err != nil {
			return nil, GetStatsOutput{}, err
		}
		end, err := parseDate(input.End, "end")
		if err != nil {
			return nil, GetStatsOutput{}, err
		}
		bundle, err = st.RangeStats(start, end)
		if err != nil {
			return nil, GetStatsOutput{}, fmt.Errorf("range stats: %w", err)
		}
	default:
		return nil, GetStatsOutput{}, fmt.Errorf("unknown window %q (expected daily, weekly, monthly, or range)", input.Window)
	}

	return nil, GetStatsOutput{
		Vendor: st.Name(),
		Window: input.Window,
		Stats:  renderBundle(bundle),
	}, nil
}

func (s *Server) handleGetAttribute(ctx context.Context, req *mcp.CallToolRequest, input GetAttributeInput) (*mcp.CallToolResult, GetAttributeOutput, error) {
	st, err := s.store(input.Vendor)
	if err != nil {
		return nil, GetAttributeOutput{}, err
	}
	if input.Key == "" {
		return nil, GetAttributeOutput{}, fmt.Errorf("key is required")
	}

	value, err := st.Attrs().Get(input.Key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, GetAttributeOutput{}, fmt.Errorf("attribute %q not set", input.Key)
		}
		return nil, GetAttributeOutput{}, fmt.Errorf("get attribute: %w", err)
	}

	return nil, GetAttributeOutput{Key: input.Key, Value: value}, nil
}

func (s *Server) handleSetAttribute(ctx context.Context, req *mcp.CallToolRequest, input SetAttributeInput) (*mcp.CallToolResult, SetAttributeOutput, error) {
	st, err := s.store(input.Vendor)
	if err != nil {
		return nil, SetAttributeOutput{}, err
	}
	if input.Key == "" {
		return nil, SetAttributeOutput{}, fmt.Errorf("key is required")
	}

	if err := st.Attrs().Set(input.Key, input.Value); err != nil {
		return nil, SetAttributeOutput{}, fmt.Errorf("set attribute: %w", err)
	}

	return nil, SetAttributeOutput{Key: input.Key, Value: input.Value}, nil
}

func (s *Server) handleQueryView(ctx context.Context, req *mcp.CallToolRequest, input QueryViewInput) (*mcp.CallToolResult, QueryViewOutput, error) {
	st, err := s.store(input.Vendor)
	if err != nil {
		return nil, QueryViewOutput{}, err
	}
	if input.View == "" {
		return nil, QueryViewOutput{}, fmt.Errorf("view is required (have: %v)", st.ViewNames())
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	cols, rows, err := st.ViewRows(input.View, limit)
	if err != nil {
		return nil, QueryViewOutput{}, fmt.Errorf("query view: %w", err)
	}

	return nil, QueryViewOutput{View: input.View, Columns: cols, Rows: rows}, nil
}

// monthBounds returns the first and last day of the month containing t.
func monthBounds(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	return first, last
}

func parseDate(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required (YYYY-MM-DD)", field)
	}
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", field, value)
	}
	return t, nil
}

// renderBundle flattens a stat bundle into strings, skipping unset values.
func renderBundle(b rollup.Bundle) map[string]string {
	out := make(map[string]string, len(b))
	for key, value := range b {
		switch v := value.(type) {
		case *float64:
			if v != nil {
				out[key] = strconv.FormatFloat(*v, 'f', -1, 64)
			}
		case *models.DayTime:
			if v != nil {
				out[key] = v.String()
			}
		case models.DayTime:
			out[key] = v.String()
		case time.Time:
			out[key] = v.Format(dateFormat)
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case string:
			out[key] = v
		default:
			out[key] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
