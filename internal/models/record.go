// ABOUTME: Normalized field records handed to the store by file decoders.
// ABOUTME: One record targets one table with a column name to value mapping.
package models

import "time"

// FieldRecord is the decoder-facing ingestion unit: a target table name and
// a mapping of column name to typed value. Missing optional fields are simply
// absent and stored as NULL.
type FieldRecord struct {
	Table  string         `json:"table"`
	Fields map[string]any `json:"fields"`
}

// Get returns the named field value, or nil when absent.
func (r FieldRecord) Get(name string) any {
	return r.Fields[name]
}

// Set stores a field value, allocating the map on first use.
func (r *FieldRecord) Set(name string, value any) {
	if r.Fields == nil {
		r.Fields = make(map[string]any)
	}
	r.Fields[name] = value
}

// Date truncates a timestamp to its calendar day in the same location.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
