// Package formats defines the pluggable decoder/encoder registry the
// importer selects readers and writers from, plus the in-memory record a
// decode produces.
package formats

import "image"

// Kind is the logical type of a decoded record. Writers declare which kinds
// they handle and the importer maps kinds to output extensions.
type Kind int

const (
	KindUnknown Kind = iota
	KindImage
	KindVistalImage
	KindMesh
	KindMesh4D
	KindFiberBundle
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVistalImage:
		return "vistal image"
	case KindMesh:
		return "mesh"
	case KindMesh4D:
		return "mesh4d"
	case KindFiberBundle:
		return "fiber bundle"
	default:
		return "unknown"
	}
}

// Metadata carries the catalog-relevant attributes of a decoded record.
// Every field is always present; absent header values are the empty string.
// See importer.Normalize for the two fields with non-empty defaults.
type Metadata struct {
	PatientName       string
	StudyDescription  string
	SeriesDescription string
	StudyUID          string
	SeriesUID         string
	Orientation       string
	SeriesNumber      string
	SequenceName      string
	SliceThickness    string
	Rows              string
	Columns           string
	Age               string
	BirthDate         string
	Gender            string
	Description       string
	Modality          string
	Protocol          string
	Comments          string
	Status            string
	AcquisitionDate   string
	ImportationDate   string
	Referee           string
	Performer         string
	Institution       string
	Report            string

	// Filled by the pipeline between decode and catalog write.
	ThumbnailPath string   // representative thumbnail, storage-relative
	Size          string   // number of slices for image data, "" otherwise
	FileName      string   // aggregated output file, storage-relative
	FilePaths     []string // source files folded into this record
}

// Record is the in-memory result of one decode, header-only or full.
// It is owned by the pipeline step currently processing it.
type Record struct {
	Kind Kind
	Meta Metadata

	// Payload and Dims are only populated by a full read.
	Payload []byte
	Dims    [3]int // columns, rows, slices

	// Thumbnails holds one preview per slice/frame, Thumbnail the
	// representative preview. Both may be nil after a header-only read.
	Thumbnails []image.Image
	Thumbnail  image.Image
}

// Reader decodes a set of source files into a Record.
type Reader interface {
	// Description identifies the reader; the resolver uses it as the
	// sticky-cache key.
	Description() string
	CanRead(paths []string) bool
	// ReadInformation decodes headers only.
	ReadInformation(paths []string) (*Record, error)
	// Read decodes headers, payload and previews.
	Read(paths []string) (*Record, error)
}

// Writer encodes a Record to a destination path.
type Writer interface {
	Description() string
	// Handled lists the record kinds this writer can encode.
	Handled() []Kind
	CanWrite(path string) bool
	Write(path string, rec *Record) error
}

// Registry is an ordered collection of readers and writers. Registration
// order is the tie-break when several entries report capability for the
// same input.
type Registry struct {
	readers []Reader
	writers []Writer
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) RegisterReader(reader Reader) {
	r.readers = append(r.readers, reader)
}

func (r *Registry) RegisterWriter(writer Writer) {
	r.writers = append(r.writers, writer)
}

func (r *Registry) Readers() []Reader {
	return r.readers
}

func (r *Registry) Writers() []Writer {
	return r.writers
}
