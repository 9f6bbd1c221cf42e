// ABOUTME: Tests for the Garmin store: open, helpers, and entity lookups.
// ABOUTME: Uses a temp data directory per test.
package garmin

import (
	"os"
	"testing"
	"time"

	"github.com/klmckay/healthdb/internal/models"
)

// setupTestDB creates a Garmin store in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "healthdb-garmin-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	db, err := Open(tmpDir, nil)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestOpenCreatesAllTables(t *testing.T) {
	db := setupTestDB(t)

	for _, name := range []string{
		"attributes", "devices", "device_info", "files", "weight",
		"stress", "sleep", "sleep_events", "resting_hr", "daily_summary",
	} {
		if _, ok := db.Table(name); !ok {
			t.Errorf("table %s not registered", name)
		}
	}
	if db.Name() != StoreName {
		t.Errorf("Name = %q, want %q", db.Name(), StoreName)
	}
}

func TestMeasurementsMetric(t *testing.T) {
	db := setupTestDB(t)

	if db.MeasurementsMetric() {
		t.Error("unset measurement system should not read as metric")
	}
	if err := db.Attrs().Set("measurement_system", "metric"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !db.MeasurementsMetric() {
		t.Error("expected metric measurement system")
	}
}

func TestLocalDeviceSerial(t *testing.T) {
	if got := LocalDeviceSerial(3996015476, 2); got != 3996015476000002 {
		t.Errorf("LocalDeviceSerial = %d, want 3996015476000002", got)
	}
}

func TestFileNameAndID(t *testing.T) {
	name, id := FileNameAndID("/data/garmin/12345678.fit")
	if name != "12345678.fit" {
		t.Errorf("name = %q, want 12345678.fit", name)
	}
	if id != "12345678" {
		t.Errorf("id = %q, want 12345678", id)
	}

	if got := FileID("activity.2026-08-01.tcx"); got != "activity" {
		t.Errorf("FileID = %q, want activity", got)
	}
}

func TestFileIDForName(t *testing.T) {
	db := setupTestDB(t)

	err := db.Upsert(models.FieldRecord{
		Table: "files",
		Fields: map[string]any{
			"id":   "12345678",
			"name": "12345678.fit",
			"type": "fit_monitoring_b",
		},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	id, err := db.FileIDForName("/export/12345678.fit")
	if err != nil {
		t.Fatalf("FileIDForName failed: %v", err)
	}
	if id != "12345678" {
		t.Errorf("id = %q, want 12345678", id)
	}
}

func TestWakeTime(t *testing.T) {
	db := setupTestDB(t)

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	events := []struct {
		ts    time.Time
		event string
	}{
		{day.Add(7*time.Hour + 30*time.Minute), "wake_time"},
		{day.Add(6 * time.Hour), "light_sleep"},
		{day.Add(9 * time.Hour), "wake_time"},
	}
	for _, e := range events {
		err := db.Upsert(models.FieldRecord{
			Table:  "sleep_events",
			Fields: map[string]any{"timestamp": e.ts, "event": e.event, "duration": "00:05:00"},
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	wake, err := db.WakeTime(day)
	if err != nil {
		t.Fatalf("WakeTime failed: %v", err)
	}
	if wake == nil {
		t.Fatal("WakeTime = nil, want first wake event")
	}
	if !wake.Equal(day.Add(7*time.Hour + 30*time.Minute)) {
		t.Errorf("WakeTime = %v, want 07:30", wake)
	}

	// A day with no events yields nil, not an error.
	none, err := db.WakeTime(day.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("WakeTime failed: %v", err)
	}
	if none != nil {
		t.Errorf("WakeTime = %v, want nil", none)
	}
}

func TestDeviceUpsertConvergesBySerial(t *testing.T) {
	db := setupTestDB(t)

	for _, product := range []string{"fenix", "fenix 8"} {
		err := db.Upsert(models.FieldRecord{
			Table: "devices",
			Fields: map[string]any{
				"serial_number": int64(3996015476),
				"timestamp":     time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
				"manufacturer":  "garmin",
				"product":       product,
			},
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	recs, err := db.Find("devices", nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 device, got %d", len(recs))
	}
	if recs[0]["product"] != "fenix 8" {
		t.Errorf("product = %v, want fenix 8", recs[0]["product"])
	}
}

func TestManufacturerEnumBinding(t *testing.T) {
	db := setupTestDB(t)

	// A raw FIT value never seen in the enum lands as unknown.
	err := db.Upsert(models.FieldRecord{
		Table: "devices",
		Fields: map[string]any{
			"serial_number": int64(1),
			"timestamp":     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			"manufacturer":  9999,
		},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	rec, err := db.FindOne("devices", nil)
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if rec["manufacturer"] != "unknown" {
		t.Errorf("manufacturer = %v, want unknown", rec["manufacturer"])
	}
}
