// ABOUTME: Garmin store: schema wiring, open, and entity helpers.
// ABOUTME: One garmin.db file per data directory, versioned as a unit.
package garmin

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/klmckay/healthdb/internal/schema"
	"github.com/klmckay/healthdb/internal/store"
)

const (
	// StoreName is the logical database name and file stem.
	StoreName = "garmin"
	// StoreVersion tags the store as a whole; bumps force a rebuild.
	StoreVersion = 13

	// UnknownDeviceSerial marks readings from an unidentifiable device.
	UnknownDeviceSerial = 9999999999

	attributesTableName = "attributes"
	measurementSystem   = "measurement_system"
)

// Schema returns the full code-defined Garmin store shape.
func Schema() store.Schema {
	return store.Schema{
		Name:    StoreName,
		Version: StoreVersion,
		Tables: []schema.Table{
			attributesTable,
			devicesTable,
			deviceInfoTable,
			filesTable,
			weightTable,
			stressTable,
			sleepTable,
			sleepEventsTable,
			restingHeartRateTable,
			dailySummaryTable,
		},
		Views: []schema.View{
			deviceInfoView,
			filesView,
		},
	}
}

// DB is an open Garmin store.
type DB struct {
	*store.DB
}

// Open opens or creates the Garmin store under dir.
func Open(dir string, opts *store.Options) (*DB, error) {
	d, err := store.Open(filepath.Join(dir, StoreName+".db"), Schema(), opts)
	if err != nil {
		return nil, err
	}
	return &DB{DB: d}, nil
}

// Attrs returns the store's key-value attribute table.
func (g *DB) Attrs() *store.Attributes {
	return g.Attributes(attributesTableName)
}

// MeasurementsMetric reports whether the store's units are metric.
func (g *DB) MeasurementsMetric() bool {
	v, err := g.Attrs().Get(measurementSystem)
	return err == nil && v == "metric"
}

// LocalDeviceSerial synthesizes a serial number for a sub device from the
// parent serial number and the sub device type value.
func LocalDeviceSerial(parentSerial int64, deviceType int) int64 {
	return parentSerial*1000000 + int64(deviceType)
}

// FileNameAndID derives the stored file name and id from a pathname.
func FileNameAndID(pathname string) (name, id string) {
	name = filepath.Base(pathname)
	id = strings.SplitN(name, ".", 2)[0]
	return name, id
}

// FileID derives the stored file id from a pathname.
func FileID(pathname string) string {
	_, id := FileNameAndID(pathname)
	return id
}

// FileIDForName looks up the id of an ingested file by basename.
func (g *DB) FileIDForName(pathname string) (string, error) {
	rec, err := g.FindOne("files", store.Record{"name": filepath.Base(pathname)})
	if err != nil {
		return "", err
	}
	id, _ := rec["id"].(string)
	return id, nil
}

// WakeTime returns the first wake event timestamp for a day, or nil when the
// day recorded none.
func (g *DB) WakeTime(day time.Time) (*time.Time, error) {
	start, end := dayWindow(day)
	times, err := g.TimesForValue("sleep_events", "event", "wake_time", start, end)
	if err != nil {
		return nil, fmt.Errorf("wake time for %s: %w", start.Format("2006-01-02"), err)
	}
	if len(times) == 0 {
		return nil, nil
	}
	return &times[0], nil
}

func dayWindow(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
