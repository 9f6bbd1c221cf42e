// ABOUTME: Generic typed entity layer: idempotent upsert and record reads.
// ABOUTME: Match columns form the natural key; re-ingesting converges to one row.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klmckay/healthdb/internal/enums"
	"github.com/klmckay/healthdb/internal/models"
	"github.com/klmckay/healthdb/internal/schema"
)

const sqlDateFormat = "2006-01-02"

// Record is a loaded row: column name to decoded typed value. Integer columns
// decode as int64, Float as float64, Date/DateTime as time.Time, TimeOfDay as
// models.DayTime, Text and EnumText as string. Missing values are nil.
type Record map[string]any

// Upsert writes one record idempotently. With match columns declared, an
// existing row with equal match values is updated in place (last write wins);
// otherwise the primary key carries the conflict target.
func (d *DB) Upsert(rec models.FieldRecord) error {
	return d.Transaction(func(tx *sql.Tx) error {
		return d.UpsertTx(tx, rec)
	})
}

// UpsertBatch writes all records in a single transaction, so one source file
// applies atomically. Individual constraint violations are collected and
// returned without aborting the rest of the batch; any other failure rolls
// the whole batch back.
func (d *DB) UpsertBatch(recs []models.FieldRecord) (recordErrs []error, err error) {
	err = d.Transaction(func(tx *sql.Tx) error {
		for _, rec := range recs {
			if uerr := d.UpsertTx(tx, rec); uerr != nil {
				if errors.Is(uerr, ErrConstraint) || errors.Is(uerr, ErrInvalidRecord) {
					recordErrs = append(recordErrs, uerr)
					continue
				}
				return uerr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recordErrs, nil
}

// UpsertTx is Upsert within a caller-owned transaction.
func (d *DB) UpsertTx(tx *sql.Tx, rec models.FieldRecord) error {
	t, bound, err := d.bindRecord(rec)
	if err != nil {
		return err
	}
	if len(t.MatchColumns) > 0 {
		return d.upsertByMatch(tx, t, bound)
	}
	return d.upsertByKey(tx, t, bound)
}

// bindRecord validates a field record against the table definition and
// converts values to their driver representation.
func (d *DB) bindRecord(rec models.FieldRecord) (schema.Table, map[string]any, error) {
	t, ok := d.tables[rec.Table]
	if !ok {
		return t, nil, fmt.Errorf("%w: unknown table %s", ErrInvalidRecord, rec.Table)
	}
	bound := make(map[string]any, len(rec.Fields))
	for name, value := range rec.Fields {
		col, ok := t.Column(name)
		if !ok {
			return t, nil, fmt.Errorf("%w: table %s has no column %s", ErrInvalidRecord, t.Name, name)
		}
		v, err := bindValue(col, value)
		if err != nil {
			return t, nil, fmt.Errorf("%w: table %s column %s: %v", ErrInvalidRecord, t.Name, name, err)
		}
		bound[name] = v
	}
	if t.TimeColumn != "" {
		if v, ok := bound[t.TimeColumn]; !ok || v == nil {
			return t, nil, fmt.Errorf("%w: table %s record missing time column %s", ErrInvalidRecord, t.Name, t.TimeColumn)
		}
	}
	for _, m := range t.MatchColumns {
		if v, ok := bound[m]; !ok || v == nil {
			return t, nil, fmt.Errorf("%w: table %s record missing match column %s", ErrInvalidRecord, t.Name, m)
		}
	}
	return t, bound, nil
}

func (d *DB) upsertByMatch(tx *sql.Tx, t schema.Table, bound map[string]any) error {
	var setCols []string
	var setArgs []any
	for _, name := range sortedKeys(bound) {
		if contains(t.MatchColumns, name) {
			continue
		}
		setCols = append(setCols, name+" = ?")
		setArgs = append(setArgs, bound[name])
	}
	var whereCols []string
	var whereArgs []any
	for _, m := range t.MatchColumns {
		whereCols = append(whereCols, m+" = ?")
		whereArgs = append(whereArgs, bound[m])
	}

	if len(setCols) > 0 {
		query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
			t.Name, strings.Join(setCols, ", "), strings.Join(whereCols, " AND "))
		res, err := tx.Exec(query, append(setArgs, whereArgs...)...)
		if err != nil {
			return wrapExecErr(t.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			return nil
		}
	} else {
		// Nothing beyond the natural key: only insert if the row is new.
		var exists int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", t.Name, strings.Join(whereCols, " AND "))
		if err := tx.QueryRow(query, whereArgs...).Scan(&exists); err != nil {
			return fmt.Errorf("find %s by match columns: %w", t.Name, err)
		}
		if exists > 0 {
			return nil
		}
	}
	return insertRow(tx, t.Name, bound)
}

func (d *DB) upsertByKey(tx *sql.Tx, t schema.Table, bound map[string]any) error {
	pks := t.PrimaryKeys()
	cols := sortedKeys(bound)
	var updates []string
	for _, name := range cols {
		if contains(pks, name) {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", name, name))
	}
	args := make([]any, len(cols))
	for i, name := range cols {
		args[i] = bound[name]
	}
	conflict := "DO NOTHING"
	if len(updates) > 0 {
		conflict = "DO UPDATE SET " + strings.Join(updates, ", ")
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) %s",
		t.Name, strings.Join(cols, ", "), placeholders(len(cols)),
		strings.Join(pks, ", "), conflict)
	if _, err := tx.Exec(query, args...); err != nil {
		return wrapExecErr(t.Name, err)
	}
	return nil
}

func insertRow(tx *sql.Tx, table string, bound map[string]any) error {
	cols := sortedKeys(bound)
	args := make([]any, len(cols))
	for i, name := range cols {
		args[i] = bound[name]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders(len(cols)))
	if _, err := tx.Exec(query, args...); err != nil {
		return wrapExecErr(table, err)
	}
	return nil
}

// Find returns the records whose listed columns equal the given values,
// ordered by the time column descending when the table has one.
func (d *DB) Find(table string, where Record) ([]Record, error) {
	t, ok := d.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: unknown table %s", ErrInvalidRecord, table)
	}
	var conds []string
	var args []any
	for _, name := range sortedKeys(where) {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: table %s has no column %s", ErrInvalidRecord, table, name)
		}
		v, err := bindValue(col, where[name])
		if err != nil {
			return nil, fmt.Errorf("%w: table %s column %s: %v", ErrInvalidRecord, table, name, err)
		}
		conds = append(conds, name+" = ?")
		args = append(args, v)
	}

	colNames := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		colNames[i] = c.Name
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(colNames, ", "), table)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if t.TimeColumn != "" {
		query += " ORDER BY " + t.TimeColumn + " DESC"
	} else {
		query += " ORDER BY " + strings.Join(t.PrimaryKeys(), ", ")
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", table, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(t, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// FindOne returns the single record matching where, or ErrNotFound.
func (d *DB) FindOne(table string, where Record) (Record, error) {
	recs, err := d.Find(table, where)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, table)
	}
	return recs[0], nil
}

func scanRecord(t schema.Table, rows *sql.Rows) (Record, error) {
	holders := make([]any, len(t.Columns))
	for i := range holders {
		holders[i] = new(sql.NullString)
	}
	if err := rows.Scan(holders...); err != nil {
		return nil, fmt.Errorf("scan %s: %w", t.Name, err)
	}
	rec := make(Record, len(t.Columns))
	for i, c := range t.Columns {
		ns := holders[i].(*sql.NullString)
		if !ns.Valid {
			rec[c.Name] = nil
			continue
		}
		v, err := decodeValue(c, ns.String)
		if err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", t.Name, c.Name, err)
		}
		rec[c.Name] = v
	}
	return rec, nil
}

// bindValue converts a typed value to its driver representation for col.
func bindValue(col schema.Column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch col.Type {
	case schema.Integer:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case float64: // JSON numbers decode as float64
			return int64(v), nil
		default:
			return nil, fmt.Errorf("want integer, got %T", value)
		}
	case schema.Float:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		default:
			return nil, fmt.Errorf("want float, got %T", value)
		}
	case schema.Date:
		switch v := value.(type) {
		case time.Time:
			return v.Format(sqlDateFormat), nil
		case string:
			if _, err := time.Parse(sqlDateFormat, v); err != nil {
				return nil, fmt.Errorf("bad date %q", v)
			}
			return v, nil
		default:
			return nil, fmt.Errorf("want date, got %T", value)
		}
	case schema.DateTime:
		switch v := value.(type) {
		case time.Time:
			return v.UTC().Format(time.RFC3339), nil
		case string:
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, fmt.Errorf("bad timestamp %q", v)
			}
			return t.UTC().Format(time.RFC3339), nil
		default:
			return nil, fmt.Errorf("want timestamp, got %T", value)
		}
	case schema.TimeOfDay:
		var dt models.DayTime
		switch v := value.(type) {
		case models.DayTime:
			dt = v
		case string:
			parsed, err := models.ParseDayTime(v)
			if err != nil {
				return nil, err
			}
			dt = parsed
		case float64:
			dt = models.FromSeconds(int(v))
		case int:
			dt = models.FromSeconds(v)
		default:
			return nil, fmt.Errorf("want time of day, got %T", value)
		}
		if !dt.InDayRange() {
			return nil, fmt.Errorf("time of day %s exceeds 24 hours", dt)
		}
		return dt.String(), nil
	case schema.EnumText:
		switch v := value.(type) {
		case string:
			if col.Enum.Has(v) {
				return v, nil
			}
			// Unrecognized names resolve to the unknown member rather than
			// aborting ingestion.
			return enums.Unknown, nil
		case int:
			return col.Enum.FromValue(v).Name, nil
		case float64:
			return col.Enum.FromValue(int(v)).Name, nil
		case enums.Member:
			return v.Name, nil
		default:
			return nil, fmt.Errorf("want enum name or value, got %T", value)
		}
	default: // schema.Text
		switch v := value.(type) {
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		default:
			return nil, fmt.Errorf("want text, got %T", value)
		}
	}
}

func decodeValue(col schema.Column, raw string) (any, error) {
	switch col.Type {
	case schema.Integer:
		return strconv.ParseInt(raw, 10, 64)
	case schema.Float:
		return strconv.ParseFloat(raw, 64)
	case schema.Date:
		return time.Parse(sqlDateFormat, raw)
	case schema.DateTime:
		return time.Parse(time.RFC3339, raw)
	case schema.TimeOfDay:
		return models.ParseDayTime(raw)
	default:
		return raw, nil
	}
}

// timeBound formats a range endpoint for comparison against the time column.
func timeBound(col schema.Column, t time.Time) string {
	if col.Type == schema.Date {
		return t.Format(sqlDateFormat)
	}
	return t.UTC().Format(time.RFC3339)
}

func wrapExecErr(table string, err error) error {
	if strings.Contains(err.Error(), "constraint") {
		return fmt.Errorf("%w: %s: %v", ErrConstraint, table, err)
	}
	return fmt.Errorf("write %s: %w", table, err)
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
