package importer

import (
	"strings"

	"github.com/mrlokans/medcatalog/internal/formats"
)

// UnknownPatientName is the placeholder for records whose header carries no
// patient identity.
const UnknownPatientName = "unknown patient"

// Normalize fills the two metadata fields that must never be empty when a
// record reaches grouping or the catalog: the patient name and the series
// description. fallbackSeriesLabel is typically the source file's base name,
// or the aggregated output name on the second pass.
//
// All other fields default to the empty string by construction, so a
// normalized record is normalized forever; calling this again is a no-op.
func Normalize(m *formats.Metadata, fallbackSeriesLabel string) {
	if m.PatientName == "" {
		m.PatientName = UnknownPatientName
	}
	if m.SeriesDescription == "" {
		m.SeriesDescription = fallbackSeriesLabel
	}
}

// Collapse trims a header string and folds internal whitespace runs into
// single spaces. Catalog identity matching and output naming both go
// through this, so a record and its cataloged counterpart always compare
// on the same form.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
