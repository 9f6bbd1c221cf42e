// ABOUTME: Garmin enumerations: canonical FIT values plus local extensions.
// ABOUTME: Extensions occupy the reserved band so raw FIT values never collide.
package garmin

import "github.com/klmckay/healthdb/internal/enums"

// manufacturerBase is the canonical manufacturer enumeration from the FIT
// profile (the subset seen in practice on wellness devices).
var manufacturerBase = enums.MustNew("manufacturer_base", []enums.Member{
	{Name: "garmin", Value: 1},
	{Name: "garmin_fr405_antfs", Value: 2},
	{Name: "zephyr", Value: 3},
	{Name: "dayton", Value: 4},
	{Name: "idt", Value: 5},
	{Name: "srm", Value: 6},
	{Name: "quarq", Value: 7},
	{Name: "ibike", Value: 8},
	{Name: "saris", Value: 9},
	{Name: "spark_hk", Value: 10},
	{Name: "tanita", Value: 11},
	{Name: "echowell", Value: 12},
	{Name: "dynastream_oem", Value: 13},
	{Name: "nautilus", Value: 14},
	{Name: "dynastream", Value: 15},
	{Name: "timex", Value: 16},
	{Name: "wahoo_fitness", Value: 32},
	{Name: "scosche", Value: 83},
	{Name: "magene", Value: 107},
	{Name: "coros", Value: 294},
})

// Manufacturer unifies the canonical manufacturers with devices reported
// through non-FIT channels.
var Manufacturer = enums.MustDerive("manufacturer", manufacturerBase, map[string]int{
	"unknown":   100000,
	"microsoft": 100001,
}, "")

// fileTypeBase is the canonical FIT file type enumeration.
var fileTypeBase = enums.MustNew("file_type_base", []enums.Member{
	{Name: "device", Value: 1},
	{Name: "settings", Value: 2},
	{Name: "sport", Value: 3},
	{Name: "activity", Value: 4},
	{Name: "workout", Value: 5},
	{Name: "course", Value: 6},
	{Name: "schedules", Value: 7},
	{Name: "weight", Value: 9},
	{Name: "totals", Value: 10},
	{Name: "goals", Value: 11},
	{Name: "blood_pressure", Value: 14},
	{Name: "monitoring_a", Value: 15},
	{Name: "activity_summary", Value: 20},
	{Name: "monitoring_daily", Value: 28},
	{Name: "monitoring_b", Value: 32},
	{Name: "segment", Value: 34},
	{Name: "segment_list", Value: 35},
})

// fitFileTypePrefix distinguishes FIT-sourced types from sideloaded formats.
const fitFileTypePrefix = "fit_"

// FileType unifies FIT file types (prefixed fit_) with sideloaded formats.
var FileType = enums.MustDerive("file_type", fileTypeBase, map[string]int{
	"tcx": 100001,
	"gpx": 100002,
}, fitFileTypePrefix)
