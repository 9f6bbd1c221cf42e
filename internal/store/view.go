// ABOUTME: Read access to derived views: generic rows keyed by column name.
// ABOUTME: Views are never written through; rebuilds happen at open time.
package store

import (
	"fmt"
)

// ViewRows reads up to limit rows from a derived view (0 means all),
// returning the view's column order alongside generic records. Values come
// back as strings the way the view rendered them; callers wanting typed
// values query the underlying tables instead.
func (d *DB) ViewRows(name string, limit int) ([]string, []map[string]string, error) {
	if _, ok := d.views[name]; !ok {
		return nil, nil, fmt.Errorf("%w: unknown view %s", ErrInvalidRecord, name)
	}
	query := "SELECT * FROM " + name
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query view %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("view %s columns: %w", name, err)
	}
	var out []map[string]string
	for rows.Next() {
		holders := make([]any, len(cols))
		raw := make([]any, len(cols))
		for i := range holders {
			holders[i] = &raw[i]
		}
		if err := rows.Scan(holders...); err != nil {
			return nil, nil, fmt.Errorf("scan view %s: %w", name, err)
		}
		rec := make(map[string]string, len(cols))
		for i, c := range cols {
			switch v := raw[i].(type) {
			case nil:
				rec[c] = ""
			case []byte:
				rec[c] = string(v)
			default:
				rec[c] = fmt.Sprintf("%v", v)
			}
		}
		out = append(out, rec)
	}
	return cols, out, rows.Err()
}

// ViewNames lists the derived views the schema declares.
func (d *DB) ViewNames() []string {
	names := make([]string, 0, len(d.views))
	for _, v := range d.schema.Views {
		names = append(names, v.Name)
	}
	return names
}
