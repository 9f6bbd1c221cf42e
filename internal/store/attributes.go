// ABOUTME: Typed key-value attribute access over a per-store table.
// ABOUTME: Parameterized by table name so every vendor store reuses it.
package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/klmckay/healthdb/internal/models"
)

// Attributes is a handle on one key-value table within a store.
type Attributes struct {
	d     *DB
	table string
}

// Attributes returns a handle on the named key-value table. The table must
// be registered in the store schema (see schema.KeyValueTable).
func (d *DB) Attributes(table string) *Attributes {
	return &Attributes{d: d, table: table}
}

// Set upserts a key-value pair, stamping it with the current time.
func (a *Attributes) Set(key, value string) error {
	return a.SetAt(key, value, time.Now())
}

// SetAt upserts a key-value pair with an explicit timestamp.
func (a *Attributes) SetAt(key, value string, ts time.Time) error {
	return a.d.Upsert(models.FieldRecord{
		Table: a.table,
		Fields: map[string]any{
			"timestamp": ts,
			"key":       key,
			"value":     value,
		},
	})
}

// SetNewer upserts only when ts is newer than the stored timestamp, so
// re-ingested older source files never clobber fresher values.
func (a *Attributes) SetNewer(key, value string, ts time.Time) error {
	existing, err := a.d.FindOne(a.table, Record{"key": key})
	if err == nil {
		if stored, ok := existing["timestamp"].(time.Time); ok && !stored.Before(ts) {
			return nil
		}
	}
	return a.SetAt(key, value, ts)
}

// SetIfUnset stores the pair only when the key is absent.
func (a *Attributes) SetIfUnset(key, value string) error {
	if _, err := a.Get(key); err == nil {
		return nil
	}
	return a.Set(key, value)
}

// Get returns the raw string value for key, or ErrNotFound.
func (a *Attributes) Get(key string) (string, error) {
	rec, err := a.d.FindOne(a.table, Record{"key": key})
	if err != nil {
		return "", fmt.Errorf("attribute %s: %w", key, err)
	}
	v, _ := rec["value"].(string)
	return v, nil
}

// GetInt parses the value as an integer.
func (a *Attributes) GetInt(key string) (int, error) {
	v, err := a.Get(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", key, err)
	}
	return n, nil
}

// GetFloat parses the value as a float.
func (a *Attributes) GetFloat(key string) (float64, error) {
	v, err := a.Get(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", key, err)
	}
	return f, nil
}

// GetTime parses the value as an HH:MM:SS duration.
func (a *Attributes) GetTime(key string) (models.DayTime, error) {
	v, err := a.Get(key)
	if err != nil {
		return 0, err
	}
	dt, err := models.ParseDayTime(v)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", key, err)
	}
	return dt, nil
}

// GetDate parses the value as a calendar date.
func (a *Attributes) GetDate(key string) (time.Time, error) {
	v, err := a.Get(key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(sqlDateFormat, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("attribute %s: %w", key, err)
	}
	return t, nil
}
