// ABOUTME: Column aggregation over half-open time ranges.
// ABOUTME: Duration columns aggregate through seconds, never clock values.
package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/klmckay/healthdb/internal/models"
	"github.com/klmckay/healthdb/internal/schema"
)

// Op is a column aggregation operator.
type Op string

const (
	OpMin Op = "MIN"
	OpMax Op = "MAX"
	OpAvg Op = "AVG"
	OpSum Op = "SUM"
)

// Aggregate computes op over a numeric column for rows whose time column
// falls in [start, end). Rows with a NULL value are excluded outright; with
// excludeZero, rows whose value is 0 are excluded as well (for metrics where
// zero means "not measured"). No qualifying rows yields nil, not zero.
func (d *DB) Aggregate(table, column string, op Op, start, end time.Time, excludeZero bool) (*float64, error) {
	t, col, err := d.aggregateTarget(table, column)
	if err != nil {
		return nil, err
	}
	if col.Type != schema.Integer && col.Type != schema.Float {
		return nil, fmt.Errorf("%w: column %s.%s is not numeric", ErrInvalidRecord, table, column)
	}
	query := fmt.Sprintf("SELECT %s(%s) FROM %s WHERE %s >= ? AND %s < ?",
		op, column, table, t.TimeColumn, t.TimeColumn)
	if excludeZero {
		query += fmt.Sprintf(" AND %s != 0", column)
	}
	return d.scanAggregate(t, query, start, end)
}

// AggregateTime is Aggregate for duration columns. Values convert to total
// seconds inside the query, aggregate there, and convert back to a DayTime.
// The excluded zero is the 00:00:00 sentinel.
func (d *DB) AggregateTime(table, column string, op Op, start, end time.Time, excludeZero bool) (*models.DayTime, error) {
	t, col, err := d.aggregateTarget(table, column)
	if err != nil {
		return nil, err
	}
	if col.Type != schema.TimeOfDay {
		return nil, fmt.Errorf("%w: column %s.%s is not a time of day", ErrInvalidRecord, table, column)
	}
	query := fmt.Sprintf("SELECT %s(%s) FROM %s WHERE %s >= ? AND %s < ? AND %s IS NOT NULL",
		op, SecondsExpr(column), table, t.TimeColumn, t.TimeColumn, column)
	if excludeZero {
		query += fmt.Sprintf(" AND %s != '00:00:00'", column)
	}
	secs, err := d.scanAggregate(t, query, start, end)
	if err != nil || secs == nil {
		return nil, err
	}
	dt := models.FromSeconds(int(math.Round(*secs)))
	return &dt, nil
}

// AggregateExpr aggregates an arbitrary SQL expression yielding seconds,
// used for computed duration columns shared between Go and SQL.
func (d *DB) AggregateExpr(table, secondsExpr string, op Op, start, end time.Time) (*models.DayTime, error) {
	t, ok := d.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: unknown table %s", ErrInvalidRecord, table)
	}
	if t.TimeColumn == "" {
		return nil, fmt.Errorf("%w: table %s has no time column", ErrInvalidRecord, table)
	}
	query := fmt.Sprintf("SELECT %s(%s) FROM %s WHERE %s >= ? AND %s < ?",
		op, secondsExpr, table, t.TimeColumn, t.TimeColumn)
	secs, err := d.scanAggregate(t, query, start, end)
	if err != nil || secs == nil {
		return nil, err
	}
	dt := models.FromSeconds(int(math.Round(*secs)))
	return &dt, nil
}

// TimesForValue returns the time-column values of rows where column equals
// value within [start, end), ascending. Used for event lookups such as the
// first wake event of a day.
func (d *DB) TimesForValue(table, column string, value any, start, end time.Time) ([]time.Time, error) {
	t, col, err := d.aggregateTarget(table, column)
	if err != nil {
		return nil, err
	}
	bound, err := bindValue(col, value)
	if err != nil {
		return nil, fmt.Errorf("%w: table %s column %s: %v", ErrInvalidRecord, table, column, err)
	}
	timeCol, _ := t.Column(t.TimeColumn)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND %s >= ? AND %s < ? ORDER BY %s",
		t.TimeColumn, table, column, t.TimeColumn, t.TimeColumn, t.TimeColumn)
	rows, err := d.db.Query(query, bound, timeBound(timeCol, start), timeBound(timeCol, end))
	if err != nil {
		return nil, fmt.Errorf("query %s times: %w", table, err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s time: %w", table, err)
		}
		v, err := decodeValue(timeCol, raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s time: %w", table, err)
		}
		out = append(out, v.(time.Time))
	}
	return out, rows.Err()
}

func (d *DB) aggregateTarget(table, column string) (schema.Table, schema.Column, error) {
	t, ok := d.tables[table]
	if !ok {
		return t, schema.Column{}, fmt.Errorf("%w: unknown table %s", ErrInvalidRecord, table)
	}
	col, ok := t.Column(column)
	if !ok {
		return t, col, fmt.Errorf("%w: table %s has no column %s", ErrInvalidRecord, table, column)
	}
	if t.TimeColumn == "" {
		return t, col, fmt.Errorf("%w: table %s has no time column", ErrInvalidRecord, table)
	}
	return t, col, nil
}

func (d *DB) scanAggregate(t schema.Table, query string, start, end time.Time) (*float64, error) {
	timeCol, _ := t.Column(t.TimeColumn)
	var v sql.NullFloat64
	err := d.db.QueryRow(query, timeBound(timeCol, start), timeBound(timeCol, end)).Scan(&v)
	if err != nil {
		return nil, fmt.Errorf("aggregate over %s: %w", t.Name, err)
	}
	if !v.Valid {
		return nil, nil
	}
	return &v.Float64, nil
}

// SecondsExpr renders the SQL that converts an HH:MM:SS column to total
// seconds. Shared by the aggregation engine and computed view columns.
func SecondsExpr(column string) string {
	return fmt.Sprintf("(strftime('%%s', %s) - strftime('%%s', '00:00:00'))", column)
}

// TimeExpr renders the SQL that converts a seconds expression back to an
// HH:MM:SS value. Only valid for per-row values below 24 hours.
func TimeExpr(secondsExpr string) string {
	return fmt.Sprintf("time(%s, 'unixepoch')", secondsExpr)
}
