// ABOUTME: Whole-store JSON export for backup and inspection.
// ABOUTME: Dumps every entity table as typed records, keyed by table name.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ExportData is the JSON shape of a full store dump.
type ExportData struct {
	Store      string              `json:"store"`
	Version    int                 `json:"version"`
	ExportedAt time.Time           `json:"exported_at"`
	Tables     map[string][]Record `json:"tables"`
}

// Export writes every entity table to w as indented JSON. Views are derived
// data and are not exported.
func (d *DB) Export(w io.Writer) error {
	data := ExportData{
		Store:      d.schema.Name,
		Version:    d.schema.Version,
		ExportedAt: time.Now().UTC(),
		Tables:     make(map[string][]Record, len(d.schema.Tables)),
	}
	for _, t := range d.schema.Tables {
		recs, err := d.Find(t.Name, nil)
		if err != nil {
			return fmt.Errorf("export %s: %w", t.Name, err)
		}
		if recs == nil {
			recs = []Record{}
		}
		data.Tables[t.Name] = recs
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}
