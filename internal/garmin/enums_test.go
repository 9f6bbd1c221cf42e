// ABOUTME: Tests for the Garmin manufacturer and file type enumerations.
// ABOUTME: Verifies canonical FIT values, extensions, and unknown fallback.
package garmin

import (
	"testing"

	"github.com/klmckay/healthdb/internal/enums"
)

func TestManufacturerCanonicalValues(t *testing.T) {
	m, ok := Manufacturer.FromName("garmin")
	if !ok || m.Value != 1 {
		t.Errorf("FromName(garmin) = %v, %v; want value 1", m, ok)
	}
	if m := Manufacturer.FromValue(294); m.Name != "coros" {
		t.Errorf("FromValue(294) = %v, want coros", m)
	}
}

func TestManufacturerExtensions(t *testing.T) {
	m, ok := Manufacturer.FromName("microsoft")
	if !ok || m.Value != 100001 {
		t.Errorf("FromName(microsoft) = %v, %v; want value 100001", m, ok)
	}
	if m := Manufacturer.FromValue(100000); m.Name != enums.Unknown {
		t.Errorf("FromValue(100000) = %v, want unknown", m)
	}
}

func TestManufacturerUnknownFallback(t *testing.T) {
	m := Manufacturer.FromValue(54321)
	if m.Name != enums.Unknown {
		t.Errorf("FromValue(54321) = %v, want unknown", m)
	}
	if m.Value != enums.ExtensionBandStart {
		t.Errorf("unknown value = %d, want %d", m.Value, enums.ExtensionBandStart)
	}
}

func TestFileTypePrefixing(t *testing.T) {
	m, ok := FileType.FromName("fit_monitoring_b")
	if !ok || m.Value != 32 {
		t.Errorf("FromName(fit_monitoring_b) = %v, %v; want value 32", m, ok)
	}
	// Sideloaded formats are unprefixed extensions.
	if m, ok := FileType.FromName("tcx"); !ok || m.Value != 100001 {
		t.Errorf("FromName(tcx) = %v, %v; want value 100001", m, ok)
	}
	if m, ok := FileType.FromName("gpx"); !ok || m.Value != 100002 {
		t.Errorf("FromName(gpx) = %v, %v; want value 100002", m, ok)
	}
	// Raw FIT names without the prefix do not resolve.
	if FileType.Has("monitoring_b") {
		t.Error("unprefixed FIT name should not exist")
	}
}
