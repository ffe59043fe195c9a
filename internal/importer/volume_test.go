package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/medcatalog/internal/formats"
)

func TestVolumeKey_Deterministic(t *testing.T) {
	m := &formats.Metadata{
		PatientName:       "DOE JOHN",
		StudyUID:          "1.2.3",
		SeriesUID:         "1.2.3.4",
		Orientation:       "1 0 0 0 1 0",
		SeriesNumber:      "2",
		SequenceName:      "t1_mpr",
		SliceThickness:    "1.5",
		Rows:              "256",
		Columns:           "256",
		SeriesDescription: "irrelevant to the key",
	}

	assert.Equal(t, VolumeKey(m), VolumeKey(m))

	clone := *m
	assert.Equal(t, VolumeKey(m), VolumeKey(&clone))
}

func TestVolumeKey_OrientationDriftGroupsTogether(t *testing.T) {
	// Scanners drift past the 5th significant digit between slices of one
	// acquisition; those slices must share a key.
	a := &formats.Metadata{Orientation: "1.00002 0 0 0 1.00001 0"}
	b := &formats.Metadata{Orientation: "1.00000 0 0 0 1.00000 0"}

	assert.Equal(t, VolumeKey(a), VolumeKey(b))
}

func TestVolumeKey_OrientationRealDifferenceSeparates(t *testing.T) {
	a := &formats.Metadata{Orientation: "1.01 0 0 0 1 0"}
	b := &formats.Metadata{Orientation: "1.02 0 0 0 1 0"}

	assert.NotEqual(t, VolumeKey(a), VolumeKey(b))
}

func TestVolumeKey_DiffersByEveryComponent(t *testing.T) {
	base := formats.Metadata{
		PatientName:    "DOE JOHN",
		StudyUID:       "1.2.3",
		SeriesUID:      "1.2.3.4",
		Orientation:    "1 0 0 0 1 0",
		SeriesNumber:   "2",
		SequenceName:   "t1_mpr",
		SliceThickness: "1.5",
		Rows:           "256",
		Columns:        "256",
	}

	mutations := []func(m *formats.Metadata){
		func(m *formats.Metadata) { m.PatientName = "DOE JANE" },
		func(m *formats.Metadata) { m.StudyUID = "9.9.9" },
		func(m *formats.Metadata) { m.SeriesUID = "9.9.9.9" },
		func(m *formats.Metadata) { m.SeriesNumber = "3" },
		func(m *formats.Metadata) { m.SequenceName = "t2_tse" },
		func(m *formats.Metadata) { m.SliceThickness = "3.0" },
		func(m *formats.Metadata) { m.Rows = "512" },
		func(m *formats.Metadata) { m.Columns = "512" },
	}

	for _, mutate := range mutations {
		m := base
		mutate(&m)
		assert.NotEqual(t, VolumeKey(&base), VolumeKey(&m))
	}
}

func TestQuantizeOrientation_NonNumericPartsPassThrough(t *testing.T) {
	assert.Equal(t, QuantizeOrientation("n/a"), QuantizeOrientation("n/a"))
	assert.Equal(t, "", QuantizeOrientation(""))
}

func TestOutputExtension(t *testing.T) {
	assert.Equal(t, ".mha", OutputExtension(formats.KindImage))
	assert.Equal(t, ".dim", OutputExtension(formats.KindVistalImage))
	assert.Equal(t, ".vtk", OutputExtension(formats.KindMesh))
	assert.Equal(t, ".v4d", OutputExtension(formats.KindMesh4D))
	assert.Equal(t, ".xml", OutputExtension(formats.KindFiberBundle))
	assert.Equal(t, "", OutputExtension(formats.KindUnknown))
}

func TestAggregatedName(t *testing.T) {
	m := &formats.Metadata{
		PatientName:       "  DOE   JOHN ",
		StudyDescription:  "Brain  Study",
		SeriesDescription: "T1 axial",
	}

	assert.Equal(t, "/DOE JOHN/Brain Study/T1 axial3", AggregatedName(m, 3))
}

func TestAggregatedName_FoldsAccents(t *testing.T) {
	m := &formats.Metadata{
		PatientName:       "tête",
		StudyDescription:  "crâne", // only the accents with a mapping fold
		SeriesDescription: "später",
	}

	assert.Equal(t, "/tete/crâne/spater1", AggregatedName(m, 1))
}
