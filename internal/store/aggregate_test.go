// ABOUTME: Tests for the aggregation engine over half-open date ranges.
// ABOUTME: Covers zero exclusion, empty ranges, and duration aggregation.
package store

import (
	"testing"
	"time"

	"github.com/klmckay/healthdb/internal/models"
)

func seedMeasurements(t *testing.T, db *DB) {
	t.Helper()
	rows := []struct {
		day   string
		value float64
		ltime string
	}{
		{"2026-08-01", 0, "00:00:00"},
		{"2026-08-02", 10, "01:00:00"},
		{"2026-08-03", 20, "00:30:00"},
	}
	for _, r := range rows {
		err := db.Upsert(models.FieldRecord{
			Table: "measurements",
			Fields: map[string]any{
				"day":         r.day,
				"value":       r.value,
				"active_time": r.ltime,
			},
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
}

func window() (time.Time, time.Time) {
	return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
}

func TestAggregateOps(t *testing.T) {
	db := setupTestDB(t)
	seedMeasurements(t, db)
	start, end := window()

	tests := []struct {
		op          Op
		excludeZero bool
		want        float64
	}{
		{OpAvg, false, 10},
		{OpAvg, true, 15},
		{OpMin, false, 0},
		{OpMin, true, 10},
		{OpMax, false, 20},
		{OpSum, false, 30},
	}
	for _, tt := range tests {
		got, err := db.Aggregate("measurements", "value", tt.op, start, end, tt.excludeZero)
		if err != nil {
			t.Fatalf("Aggregate(%s, excludeZero=%v) failed: %v", tt.op, tt.excludeZero, err)
		}
		if got == nil {
			t.Fatalf("Aggregate(%s, excludeZero=%v) = nil, want %v", tt.op, tt.excludeZero, tt.want)
		}
		if *got != tt.want {
			t.Errorf("Aggregate(%s, excludeZero=%v) = %v, want %v", tt.op, tt.excludeZero, *got, tt.want)
		}
	}
}

func TestAggregateEmptyRangeIsNil(t *testing.T) {
	db := setupTestDB(t)
	seedMeasurements(t, db)

	start := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := db.Aggregate("measurements", "value", OpAvg, start, start.AddDate(0, 1, 0), false)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if got != nil {
		t.Errorf("Aggregate over empty range = %v, want nil", *got)
	}
}

func TestAggregateRangeIsHalfOpen(t *testing.T) {
	db := setupTestDB(t)
	seedMeasurements(t, db)

	// [Aug 1, Aug 3): the Aug 3 row is excluded.
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	got, err := db.Aggregate("measurements", "value", OpSum, start, end, false)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if got == nil || *got != 10 {
		t.Errorf("Aggregate = %v, want 10", got)
	}
}

func TestAggregateRejectsNonNumericColumn(t *testing.T) {
	db := setupTestDB(t)
	start, end := window()

	if _, err := db.Aggregate("measurements", "note", OpAvg, start, end, false); err == nil {
		t.Error("expected error for text column")
	}
	if _, err := db.Aggregate("measurements", "active_time", OpAvg, start, end, false); err == nil {
		t.Error("expected error for time-of-day column")
	}
}

func TestAggregateTime(t *testing.T) {
	db := setupTestDB(t)
	seedMeasurements(t, db)
	start, end := window()

	sum, err := db.AggregateTime("measurements", "active_time", OpSum, start, end, false)
	if err != nil {
		t.Fatalf("AggregateTime failed: %v", err)
	}
	if sum == nil || *sum != models.FromSeconds(5400) {
		t.Errorf("sum = %v, want 01:30:00", sum)
	}

	// The 00:00:00 sentinel drags the unfiltered average down.
	avgAll, err := db.AggregateTime("measurements", "active_time", OpAvg, start, end, false)
	if err != nil {
		t.Fatalf("AggregateTime failed: %v", err)
	}
	if avgAll == nil || *avgAll != models.FromSeconds(1800) {
		t.Errorf("avg (all) = %v, want 00:30:00", avgAll)
	}

	avgNonzero, err := db.AggregateTime("measurements", "active_time", OpAvg, start, end, true)
	if err != nil {
		t.Fatalf("AggregateTime failed: %v", err)
	}
	if avgNonzero == nil || *avgNonzero != models.FromSeconds(2700) {
		t.Errorf("avg (nonzero) = %v, want 00:45:00", avgNonzero)
	}
}

func TestAggregateTimeRejectsNumericColumn(t *testing.T) {
	db := setupTestDB(t)
	start, end := window()

	if _, err := db.AggregateTime("measurements", "value", OpAvg, start, end, false); err == nil {
		t.Error("expected error for numeric column")
	}
}

func TestAggregateExpr(t *testing.T) {
	db := setupTestDB(t)
	seedMeasurements(t, db)
	start, end := window()

	// Doubled active time, computed in seconds inside the query.
	expr := "(2 * " + SecondsExpr("active_time") + ")"
	got, err := db.AggregateExpr("measurements", expr, OpSum, start, end)
	if err != nil {
		t.Fatalf("AggregateExpr failed: %v", err)
	}
	if got == nil || *got != models.FromSeconds(10800) {
		t.Errorf("AggregateExpr = %v, want 03:00:00", got)
	}
}

func TestTimesForValue(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2026, 8, 1, 22, 0, 0, 0, time.UTC)
	events := []struct {
		ts    time.Time
		event string
	}{
		{base, "light_sleep"},
		{base.Add(2 * time.Hour), "wake_time"},
		{base.Add(1 * time.Hour), "wake_time"},
	}
	for _, e := range events {
		err := db.Upsert(models.FieldRecord{
			Table:  "events",
			Fields: map[string]any{"timestamp": e.ts, "event": e.event},
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	times, err := db.TimesForValue("events", "event", "wake_time", base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("TimesForValue failed: %v", err)
	}
	if len(times) != 2 {
		t.Fatalf("expected 2 times, got %d", len(times))
	}
	// Ascending: the earlier wake event comes first.
	if !times[0].Equal(base.Add(1 * time.Hour)) {
		t.Errorf("first time = %v, want %v", times[0], base.Add(1*time.Hour))
	}
}

func TestSecondsExpr(t *testing.T) {
	want := "(strftime('%s', active_time) - strftime('%s', '00:00:00'))"
	if got := SecondsExpr("active_time"); got != want {
		t.Errorf("SecondsExpr = %q, want %q", got, want)
	}
}
