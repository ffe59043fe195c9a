package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/medcatalog/internal/formats"
)

func TestNormalize_FillsDefaults(t *testing.T) {
	m := &formats.Metadata{}

	Normalize(m, "slice_0001")

	assert.Equal(t, UnknownPatientName, m.PatientName)
	assert.Equal(t, "slice_0001", m.SeriesDescription)
}

func TestNormalize_KeepsPresentValues(t *testing.T) {
	m := &formats.Metadata{
		PatientName:       "DOE JOHN",
		SeriesDescription: "T1 axial",
	}

	Normalize(m, "slice_0001")

	assert.Equal(t, "DOE JOHN", m.PatientName)
	assert.Equal(t, "T1 axial", m.SeriesDescription)
}

func TestNormalize_Idempotent(t *testing.T) {
	m := &formats.Metadata{}

	Normalize(m, "first")
	Normalize(m, "second")

	assert.Equal(t, UnknownPatientName, m.PatientName)
	assert.Equal(t, "first", m.SeriesDescription)
}

func TestCollapse(t *testing.T) {
	assert.Equal(t, "DOE JOHN", Collapse("  DOE \t JOHN \n"))
	assert.Equal(t, "", Collapse("   "))
	assert.Equal(t, "already clean", Collapse("already clean"))
}
