// Package dicomfile adapts github.com/suyashkumar/dicom to the format
// registry's Reader interface.
package dicomfile

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
	"gonum.org/v1/gonum/stat"

	"github.com/mrlokans/medcatalog/internal/formats"
)

const readerDescription = "dicomReader"

// magicOffset is where the "DICM" marker sits, after the 128-byte preamble.
const magicOffset = 128

type Reader struct{}

func New() *Reader {
	return &Reader{}
}

func (r *Reader) Description() string {
	return readerDescription
}

// CanRead reports whether every path carries the DICM preamble marker.
func (r *Reader) CanRead(paths []string) bool {
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		if !hasDicomMagic(p) {
			return false
		}
	}
	return true
}

func hasDicomMagic(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	magic := make([]byte, 4)
	if _, err := f.ReadAt(magic, magicOffset); err != nil {
		return false
	}
	return string(magic) == "DICM"
}

// ReadInformation decodes the header of the first path only. All files of a
// candidate set share the identity attributes the importer cares about.
func (r *Reader) ReadInformation(paths []string) (*formats.Record, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("dicomfile: no paths given")
	}

	ds, err := dicom.ParseFile(paths[0], nil, dicom.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("dicomfile: parse %s: %w", paths[0], err)
	}

	return &formats.Record{
		Kind: formats.KindImage,
		Meta: metadataFromDataset(&ds),
	}, nil
}

// Read fully decodes all paths into one record: metadata from the first
// file, pixel payload and one preview per frame across all files, in path
// order.
func (r *Reader) Read(paths []string) (*formats.Record, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("dicomfile: no paths given")
	}

	ordered := append([]string(nil), paths...)
	sort.Strings(ordered)

	rec := &formats.Record{Kind: formats.KindImage}

	for i, path := range ordered {
		ds, err := dicom.ParseFile(path, nil)
		if err != nil {
			return nil, fmt.Errorf("dicomfile: parse %s: %w", path, err)
		}

		if i == 0 {
			rec.Meta = metadataFromDataset(&ds)
			rec.Dims[0], _ = strconv.Atoi(rec.Meta.Columns)
			rec.Dims[1], _ = strconv.Atoi(rec.Meta.Rows)
		}

		if err := appendPixelData(rec, &ds, path); err != nil {
			return nil, err
		}
	}

	rec.Dims[2] = len(rec.Thumbnails)
	if n := len(rec.Thumbnails); n > 0 {
		rec.Thumbnail = rec.Thumbnails[n/2]
	}

	return rec, nil
}

func appendPixelData(rec *formats.Record, ds *dicom.Dataset, path string) error {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil || el == nil {
		// Headers without pixel data still index fine; they just have
		// no previews.
		return nil
	}

	info := dicom.MustGetPixelDataInfo(el.Value)
	for _, fr := range info.Frames {
		img, payload, err := frameImage(fr)
		if err != nil {
			return fmt.Errorf("dicomfile: decode frame of %s: %w", path, err)
		}
		rec.Thumbnails = append(rec.Thumbnails, img)
		rec.Payload = append(rec.Payload, payload...)
	}
	return nil
}

// frameImage converts one frame to a preview image and its raw little-endian
// sample bytes. Encapsulated frames are decompressed by the library first, so
// they contribute voxels like native ones do.
func frameImage(fr *frame.Frame) (image.Image, []byte, error) {
	if fr.Encapsulated {
		img, err := fr.GetImage()
		if err != nil {
			return nil, nil, err
		}
		samples, payload := imageSamples(img)
		b := img.Bounds()
		return windowedImage(samples, b.Dx(), b.Dy()), payload, nil
	}

	native := fr.NativeData
	samples := nativeSamples(native)
	if samples == nil {
		return nil, nil, fmt.Errorf("unsupported native sample slice %T", native.RawDataSlice())
	}
	payload := make([]byte, 0, len(samples)*2)
	for _, v := range samples {
		payload = binary.LittleEndian.AppendUint16(payload, uint16(v))
	}

	return windowedImage(samples, native.Cols(), native.Rows()), payload, nil
}

// imageSamples flattens a decoded frame to 16-bit luminance samples and their
// little-endian bytes.
func imageSamples(img image.Image) ([]float64, []byte) {
	b := img.Bounds()
	samples := make([]float64, 0, b.Dx()*b.Dy())
	payload := make([]byte, 0, b.Dx()*b.Dy()*2)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v, _, _, _ := img.At(x, y).RGBA()
			samples = append(samples, float64(v))
			payload = binary.LittleEndian.AppendUint16(payload, uint16(v))
		}
	}
	return samples, payload
}

// nativeSamples flattens whatever concrete sample slice the parser chose for
// the transfer syntax, nil when the element width is unexpected.
func nativeSamples(native frame.INativeFrame) []float64 {
	switch data := native.RawDataSlice().(type) {
	case []int:
		return toFloats(data)
	case []uint8:
		return toFloats(data)
	case []uint16:
		return toFloats(data)
	case []uint32:
		return toFloats(data)
	case []int8:
		return toFloats(data)
	case []int16:
		return toFloats(data)
	case []int32:
		return toFloats(data)
	default:
		return nil
	}
}

func toFloats[T int | int8 | int16 | int32 | uint8 | uint16 | uint32](data []T) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// windowedImage maps raw intensities to 8-bit grayscale, clipping to the
// 1st..99th percentile so a few hot pixels do not wash out the preview.
func windowedImage(samples []float64, cols, rows int) image.Image {
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	lo := stat.Quantile(0.01, stat.Empirical, sorted, nil)
	hi := stat.Quantile(0.99, stat.Empirical, sorted, nil)
	if hi <= lo {
		hi = lo + 1
	}

	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for i, v := range samples {
		scaled := (v - lo) / (hi - lo) * 255
		if scaled < 0 {
			scaled = 0
		}
		if scaled > 255 {
			scaled = 255
		}
		img.SetGray(i%cols, i/cols, color.Gray{Y: uint8(scaled)})
	}
	return img
}

func metadataFromDataset(ds *dicom.Dataset) formats.Metadata {
	return formats.Metadata{
		PatientName:       stringValue(ds, tag.PatientName),
		StudyDescription:  stringValue(ds, tag.StudyDescription),
		SeriesDescription: stringValue(ds, tag.SeriesDescription),
		StudyUID:          stringValue(ds, tag.StudyInstanceUID),
		SeriesUID:         stringValue(ds, tag.SeriesInstanceUID),
		Orientation:       strings.Join(stringValues(ds, tag.ImageOrientationPatient), " "),
		SeriesNumber:      stringValue(ds, tag.SeriesNumber),
		SequenceName:      stringValue(ds, tag.SequenceName),
		SliceThickness:    stringValue(ds, tag.SliceThickness),
		Rows:              intValue(ds, tag.Rows),
		Columns:           intValue(ds, tag.Columns),
		Age:               stringValue(ds, tag.PatientAge),
		BirthDate:         stringValue(ds, tag.PatientBirthDate),
		Gender:            stringValue(ds, tag.PatientSex),
		Modality:          stringValue(ds, tag.Modality),
		Protocol:          stringValue(ds, tag.ProtocolName),
		Comments:          stringValue(ds, tag.ImageComments),
		AcquisitionDate:   stringValue(ds, tag.AcquisitionDate),
		Referee:           stringValue(ds, tag.ReferringPhysicianName),
		Performer:         stringValue(ds, tag.PerformingPhysicianName),
		Institution:       stringValue(ds, tag.InstitutionName),
	}
}

// stringValue extracts the first string value for a tag, empty when absent.
// Uses the element's typed value rather than its verbose String() form.
func stringValue(ds *dicom.Dataset, t tag.Tag) string {
	vals := stringValues(ds, t)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func stringValues(ds *dicom.Dataset, t tag.Tag) []string {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return nil
	}
	if el.Value.ValueType() != dicom.Strings {
		log.Printf("dicomfile: tag %v is not a string value", t)
		return nil
	}
	vals := dicom.MustGetStrings(el.Value)
	for i := range vals {
		vals[i] = strings.TrimSpace(vals[i])
	}
	return vals
}

// intValue extracts the first integer value for a tag as its decimal string,
// empty when absent. Rows and Columns are unsigned-short elements.
func intValue(ds *dicom.Dataset, t tag.Tag) string {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return ""
	}
	if el.Value.ValueType() != dicom.Ints {
		return ""
	}
	vals := dicom.MustGetInts(el.Value)
	if len(vals) == 0 {
		return ""
	}
	return strconv.Itoa(vals[0])
}
