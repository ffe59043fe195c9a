package importer

import (
	"strconv"
	"strings"

	"github.com/mrlokans/medcatalog/internal/formats"
)

// VolumeKey computes the grouping/deduplication key for a record. Files
// sharing a key belong to the same logical volume and are aggregated into
// one catalog series. The key is a pure function of normalized metadata:
// identical input always recomputes the identical key.
func VolumeKey(m *formats.Metadata) string {
	return m.PatientName +
		m.StudyUID +
		m.SeriesUID +
		QuantizeOrientation(m.Orientation) +
		m.SeriesNumber +
		m.SequenceName +
		m.SliceThickness +
		m.Rows +
		m.Columns
}

// QuantizeOrientation reformats each direction-cosine component of a raw
// orientation string to 5 significant digits. Scanners emit orientations
// that drift past the 5th digit between slices of one acquisition; without
// quantization that noise fractures a volume into many.
func QuantizeOrientation(orientation string) string {
	var b strings.Builder
	for _, part := range strings.Fields(orientation) {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			b.WriteString(part)
			continue
		}
		b.WriteString(strconv.FormatFloat(v, 'g', 5, 64))
	}
	return b.String()
}

// OutputExtension maps a record kind to the storage format aggregated
// output is encoded to. The empty string means no encoder target exists
// for the kind; in import mode such records are rejected.
func OutputExtension(kind formats.Kind) string {
	switch kind {
	case formats.KindMesh:
		return ".vtk"
	case formats.KindMesh4D:
		return ".v4d"
	case formats.KindFiberBundle:
		return ".xml"
	case formats.KindVistalImage:
		return ".dim"
	case formats.KindImage:
		return ".mha"
	default:
		return ""
	}
}

var asciiFold = strings.NewReplacer("ê", "e", "ä", "a")

// AggregatedName builds the storage-relative output name for a volume:
// /<patient>/<study>/<series><volumeNumber>. Names are whitespace-collapsed
// and folded to filesystem-friendly ASCII for the accented characters that
// show up in practice.
func AggregatedName(m *formats.Metadata, volumeNumber int) string {
	patient := asciiFold.Replace(Collapse(m.PatientName))
	study := asciiFold.Replace(Collapse(m.StudyDescription))
	series := asciiFold.Replace(Collapse(m.SeriesDescription))

	return "/" + patient + "/" + study + "/" + series + strconv.Itoa(volumeNumber)
}
