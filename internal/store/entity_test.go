// ABOUTME: Tests for idempotent upsert, batch writes, and record reads.
// ABOUTME: Covers match-column convergence, validation, and type binding.
package store

import (
	"errors"
	"testing"
	"time"

	"github.com/klmckay/healthdb/internal/models"
)

func mustUpsertDay(t *testing.T, db *DB, day string, value float64) {
	t.Helper()
	err := db.Upsert(models.FieldRecord{
		Table:  "measurements",
		Fields: map[string]any{"day": day, "value": value},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
}

func TestUpsertByKeyIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	mustUpsertDay(t, db, "2026-08-01", 80.0)
	mustUpsertDay(t, db, "2026-08-01", 81.5)

	recs, err := db.Find("measurements", nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(recs))
	}
	if v := recs[0]["value"].(float64); v != 81.5 {
		t.Errorf("value = %v, want 81.5 (last write wins)", v)
	}
}

func TestUpsertByKeyKeepsUnmentionedColumns(t *testing.T) {
	db := setupTestDB(t)

	err := db.Upsert(models.FieldRecord{
		Table:  "measurements",
		Fields: map[string]any{"day": "2026-08-01", "value": 80.0, "note": "morning"},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	// Second write omits note: only the mentioned columns change.
	mustUpsertDay(t, db, "2026-08-01", 81.0)

	rec, err := db.FindOne("measurements", Record{"day": "2026-08-01"})
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if rec["note"] != "morning" {
		t.Errorf("note = %v, want morning", rec["note"])
	}
	if rec["value"].(float64) != 81.0 {
		t.Errorf("value = %v, want 81.0", rec["value"])
	}
}

func TestUpsertByMatchConverges(t *testing.T) {
	db := setupTestDB(t)

	ts := time.Date(2026, 8, 1, 22, 15, 0, 0, time.UTC)
	for _, event := range []string{"deep_sleep", "wake_time"} {
		err := db.Upsert(models.FieldRecord{
			Table:  "events",
			Fields: map[string]any{"timestamp": ts, "event": event},
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	recs, err := db.Find("events", nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(recs))
	}
	if recs[0]["event"] != "wake_time" {
		t.Errorf("event = %v, want wake_time", recs[0]["event"])
	}
}

func TestUpsertByMatchInsertsDistinctKeys(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2026, 8, 1, 22, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := db.Upsert(models.FieldRecord{
			Table:  "events",
			Fields: map[string]any{"timestamp": base.Add(time.Duration(i) * time.Hour), "event": "light_sleep"},
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	recs, err := db.Find("events", nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("expected 3 rows, got %d", len(recs))
	}
}

func TestUpsertRejectsUnknownTable(t *testing.T) {
	db := setupTestDB(t)

	err := db.Upsert(models.FieldRecord{Table: "nope", Fields: map[string]any{"a": 1}})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestUpsertRejectsUnknownColumn(t *testing.T) {
	db := setupTestDB(t)

	err := db.Upsert(models.FieldRecord{
		Table:  "measurements",
		Fields: map[string]any{"day": "2026-08-01", "bogus": 1},
	})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestUpsertRequiresTimeColumn(t *testing.T) {
	db := setupTestDB(t)

	err := db.Upsert(models.FieldRecord{
		Table:  "measurements",
		Fields: map[string]any{"value": 80.0},
	})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestUpsertRequiresMatchColumns(t *testing.T) {
	db := setupTestDB(t)

	err := db.Upsert(models.FieldRecord{
		Table:  "events",
		Fields: map[string]any{"event": "wake_time"},
	})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestUpsertRejectsOversizedTimeOfDay(t *testing.T) {
	db := setupTestDB(t)

	err := db.Upsert(models.FieldRecord{
		Table:  "measurements",
		Fields: map[string]any{"day": "2026-08-01", "active_time": models.FromSeconds(25 * 3600)},
	})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestUpsertBatchCollectsRecordErrors(t *testing.T) {
	db := setupTestDB(t)

	recs := []models.FieldRecord{
		{Table: "measurements", Fields: map[string]any{"day": "2026-08-01", "value": 80.0}},
		{Table: "measurements", Fields: map[string]any{"value": 81.0}}, // missing time column
		{Table: "measurements", Fields: map[string]any{"day": "2026-08-02", "value": 82.0}},
	}
	recordErrs, err := db.UpsertBatch(recs)
	if err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}
	if len(recordErrs) != 1 {
		t.Fatalf("expected 1 record error, got %d: %v", len(recordErrs), recordErrs)
	}
	if !errors.Is(recordErrs[0], ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", recordErrs[0])
	}

	// The valid records still landed.
	rows, err := db.Find("measurements", nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}
}

func TestFindOrdersByTimeDescending(t *testing.T) {
	db := setupTestDB(t)

	for _, day := range []string{"2026-08-01", "2026-08-03", "2026-08-02"} {
		mustUpsertDay(t, db, day, 80.0)
	}

	recs, err := db.Find("measurements", nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(recs))
	}
	first := recs[0]["day"].(time.Time)
	if first.Day() != 3 {
		t.Errorf("first row day = %v, want 2026-08-03", first)
	}
}

func TestFindFiltersByEquality(t *testing.T) {
	db := setupTestDB(t)

	mustUpsertDay(t, db, "2026-08-01", 80.0)
	mustUpsertDay(t, db, "2026-08-02", 81.0)

	recs, err := db.Find("measurements", Record{"day": "2026-08-02"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(recs))
	}
	if recs[0]["value"].(float64) != 81.0 {
		t.Errorf("value = %v, want 81.0", recs[0]["value"])
	}
}

func TestFindOneNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.FindOne("measurements", Record{"day": "2026-08-01"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordRoundTripTypes(t *testing.T) {
	db := setupTestDB(t)

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := db.Upsert(models.FieldRecord{
		Table: "measurements",
		Fields: map[string]any{
			"day":         day,
			"value":       72.4,
			"count":       int64(11),
			"active_time": "01:30:00",
			"note":        "evening",
		},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	rec, err := db.FindOne("measurements", Record{"day": day})
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if got := rec["day"].(time.Time); !got.Equal(day) {
		t.Errorf("day = %v, want %v", got, day)
	}
	if rec["value"].(float64) != 72.4 {
		t.Errorf("value = %v, want 72.4", rec["value"])
	}
	if rec["count"].(int64) != 11 {
		t.Errorf("count = %v, want 11", rec["count"])
	}
	if rec["active_time"].(models.DayTime) != models.FromSeconds(5400) {
		t.Errorf("active_time = %v, want 01:30:00", rec["active_time"])
	}
	if rec["note"] != "evening" {
		t.Errorf("note = %v, want evening", rec["note"])
	}
}

func TestUpsertAcceptsJSONNumericTypes(t *testing.T) {
	db := setupTestDB(t)

	// JSON decoding hands every number over as float64.
	err := db.Upsert(models.FieldRecord{
		Table: "measurements",
		Fields: map[string]any{
			"day":         "2026-08-01",
			"value":       float64(80),
			"count":       float64(12),
			"active_time": float64(5400),
		},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	rec, err := db.FindOne("measurements", Record{"day": "2026-08-01"})
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if rec["count"].(int64) != 12 {
		t.Errorf("count = %v, want 12", rec["count"])
	}
	if rec["active_time"].(models.DayTime) != models.FromSeconds(5400) {
		t.Errorf("active_time = %v, want 01:30:00", rec["active_time"])
	}
}
