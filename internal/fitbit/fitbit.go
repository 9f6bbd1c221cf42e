// ABOUTME: FitBit store: daily summary table, attributes, and schema wiring.
// ABOUTME: A separately-versioned fitbit.db alongside the Garmin store.
package fitbit

import (
	"path/filepath"

	"github.com/klmckay/healthdb/internal/schema"
	"github.com/klmckay/healthdb/internal/store"
)

const (
	// StoreName is the logical database name and file stem.
	StoreName = "fitbit"
	// StoreVersion tags the store as a whole.
	StoreVersion = 5

	attributesTableName = "attributes"
)

var attributesTable = schema.KeyValueTable(attributesTableName, 1)

// daysSummaryTable is the single wide FitBit daily summary: activity minutes
// and sleep durations arrive as raw minute counts, not clock times.
var daysSummaryTable = schema.Table{
	Name:    "days_summary",
	Version: 1,
	Columns: []schema.Column{
		{Name: "day", Type: schema.Date, PrimaryKey: true},
		{Name: "calories_in", Type: schema.Integer},
		{Name: "log_water", Type: schema.Float},
		{Name: "calories", Type: schema.Integer},
		{Name: "calories_bmr", Type: schema.Integer},
		{Name: "steps", Type: schema.Integer},
		{Name: "distance", Type: schema.Float},
		{Name: "floors", Type: schema.Integer},
		{Name: "elevation", Type: schema.Float},
		{Name: "sedentary_mins", Type: schema.Integer},
		{Name: "lightly_active_mins", Type: schema.Integer},
		{Name: "fairly_active_mins", Type: schema.Integer},
		{Name: "very_active_mins", Type: schema.Integer},
		{Name: "activities_calories", Type: schema.Integer},
		{Name: "sleep_start", Type: schema.TimeOfDay},
		{Name: "in_bed_mins", Type: schema.Integer},
		{Name: "asleep_mins", Type: schema.Integer},
		{Name: "awakenings_count", Type: schema.Integer},
		{Name: "awake_mins", Type: schema.Integer},
		{Name: "to_fall_asleep_mins", Type: schema.Integer},
		{Name: "after_wakeup_mins", Type: schema.Integer},
		{Name: "sleep_efficiency", Type: schema.Integer},
		{Name: "weight", Type: schema.Float},
		{Name: "bmi", Type: schema.Float},
	},
	TimeColumn: "day",
}

// Schema returns the full code-defined FitBit store shape.
func Schema() store.Schema {
	return store.Schema{
		Name:    StoreName,
		Version: StoreVersion,
		Tables: []schema.Table{
			attributesTable,
			daysSummaryTable,
		},
	}
}

// DB is an open FitBit store.
type DB struct {
	*store.DB
}

// Open opens or creates the FitBit store under dir.
func Open(dir string, opts *store.Options) (*DB, error) {
	d, err := store.Open(filepath.Join(dir, StoreName+".db"), Schema(), opts)
	if err != nil {
		return nil, err
	}
	return &DB{DB: d}, nil
}

// Attrs returns the store's key-value attribute table.
func (f *DB) Attrs() *store.Attributes {
	return f.Attributes(attributesTableName)
}
