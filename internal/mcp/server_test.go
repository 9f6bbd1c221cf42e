// ABOUTME: Tests for the MCP server, tool handlers, and bundle rendering.
// ABOUTME: Runs handlers directly against a temp Garmin store.
package mcp

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/klmckay/healthdb/internal/garmin"
	"github.com/klmckay/healthdb/internal/models"
	"github.com/klmckay/healthdb/internal/rollup"
)

// setupTestStore creates a Garmin store in a temp directory.
func setupTestStore(t *testing.T) *garmin.DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "healthdb-mcp-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	db, err := garmin.Open(tmpDir, nil)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestNewServer(t *testing.T) {
	db := setupTestStore(t)

	server, err := NewServer(db)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if server == nil {
		t.Fatal("Expected non-nil server")
	}
	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if len(server.stores) != 1 {
		t.Errorf("stores = %d, want 1", len(server.stores))
	}
}

func TestNewServerRequiresStores(t *testing.T) {
	if _, err := NewServer(); err == nil {
		t.Fatal("expected error for empty store list")
	}
}

func TestStoreResolution(t *testing.T) {
	db := setupTestStore(t)
	server, _ := NewServer(db)

	// With one store open, the vendor is optional.
	st, err := server.store("")
	if err != nil {
		t.Fatalf("store(\"\") failed: %v", err)
	}
	if st.Name() != garmin.StoreName {
		t.Errorf("Name = %q, want %q", st.Name(), garmin.StoreName)
	}

	if _, err := server.store("polar"); err == nil {
		t.Error("expected error for unknown vendor")
	}
}

func TestHandleGetStats(t *testing.T) {
	db := setupTestStore(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	err := db.Upsert(models.FieldRecord{
		Table: "daily_summary",
		Fields: map[string]any{
			"day":       "2026-08-01",
			"steps":     8000,
			"step_goal": 10000,
		},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	_, out, err := server.handleGetStats(ctx, nil, GetStatsInput{
		Window: "daily",
		Date:   "2026-08-01",
	})
	if err != nil {
		t.Fatalf("handleGetStats failed: %v", err)
	}
	if out.Vendor != garmin.StoreName {
		t.Errorf("Vendor = %q, want %q", out.Vendor, garmin.StoreName)
	}
	if out.Stats["steps"] != "8000" {
		t.Errorf("steps = %q, want 8000", out.Stats["steps"])
	}
	if out.Stats["steps_goal_percent"] != "80" {
		t.Errorf("steps_goal_percent = %q, want 80", out.Stats["steps_goal_percent"])
	}
}

func TestHandleGetStatsValidation(t *testing.T) {
	db := setupTestStore(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	if _, _, err := server.handleGetStats(ctx, nil, GetStatsInput{Window: "hourly"}); err == nil {
		t.Error("expected error for unknown window")
	}
	if _, _, err := server.handleGetStats(ctx, nil, GetStatsInput{Window: "daily"}); err == nil {
		t.Error("expected error for missing date")
	}
	if _, _, err := server.handleGetStats(ctx, nil, GetStatsInput{Window: "daily", Date: "Aug 1"}); err == nil {
		t.Error("expected error for malformed date")
	}
	if _, _, err := server.handleGetStats(ctx, nil, GetStatsInput{Window: "range", Start: "2026-08-01"}); err == nil {
		t.Error("expected error for missing range end")
	}
}

func TestHandleAttributes(t *testing.T) {
	db := setupTestStore(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	_, setOut, err := server.handleSetAttribute(ctx, nil, SetAttributeInput{
		Key:   "measurement_system",
		Value: "metric",
	})
	if err != nil {
		t.Fatalf("handleSetAttribute failed: %v", err)
	}
	if setOut.Value != "metric" {
		t.Errorf("Value = %q, want metric", setOut.Value)
	}

	_, getOut, err := server.handleGetAttribute(ctx, nil, GetAttributeInput{Key: "measurement_system"})
	if err != nil {
		t.Fatalf("handleGetAttribute failed: %v", err)
	}
	if getOut.Value != "metric" {
		t.Errorf("Value = %q, want metric", getOut.Value)
	}

	if _, _, err := server.handleGetAttribute(ctx, nil, GetAttributeInput{Key: "nope"}); err == nil {
		t.Error("expected error for unset attribute")
	}
	if _, _, err := server.handleSetAttribute(ctx, nil, SetAttributeInput{Value: "x"}); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestHandleQueryView(t *testing.T) {
	db := setupTestStore(t)
	server, _ := NewServer(db)
	ctx := context.Background()

	err := db.Upsert(models.FieldRecord{
		Table: "devices",
		Fields: map[string]any{
			"serial_number": int64(123456),
			"timestamp":     time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
			"manufacturer":  "garmin",
			"product":       "fenix",
		},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	err = db.Upsert(models.FieldRecord{
		Table: "device_info",
		Fields: map[string]any{
			"timestamp":     time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
			"serial_number": int64(123456),
			"device_type":   "fitness_tracker",
		},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	_, out, err := server.handleQueryView(ctx, nil, QueryViewInput{View: "device_info_view"})
	if err != nil {
		t.Fatalf("handleQueryView failed: %v", err)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(out.Rows))
	}
	if out.Rows[0]["product"] != "fenix" {
		t.Errorf("product = %q, want fenix", out.Rows[0]["product"])
	}

	if _, _, err := server.handleQueryView(ctx, nil, QueryViewInput{}); err == nil {
		t.Error("expected error for missing view name")
	}
}

func TestRenderBundle(t *testing.T) {
	steps := 8000.5
	sleep := models.FromMinutes(450)
	var noWeight *float64

	b := rollup.Bundle{
		"steps":      &steps,
		"sleep_avg":  &sleep,
		"weight_avg": noWeight,
		"percent":    float64(80),
		"day":        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	out := renderBundle(b)

	if out["steps"] != "8000.5" {
		t.Errorf("steps = %q, want 8000.5", out["steps"])
	}
	if out["sleep_avg"] != "07:30:00" {
		t.Errorf("sleep_avg = %q, want 07:30:00", out["sleep_avg"])
	}
	if out["percent"] != "80" {
		t.Errorf("percent = %q, want 80", out["percent"])
	}
	if out["day"] != "2026-08-01" {
		t.Errorf("day = %q, want 2026-08-01", out["day"])
	}
	if _, ok := out["weight_avg"]; ok {
		t.Error("nil values must be omitted")
	}
}
