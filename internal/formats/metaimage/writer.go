// Package metaimage encodes image records as MetaImage (.mha) files, the
// storage format aggregated volumes are re-encoded to on import.
package metaimage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/medcatalog/internal/formats"
)

const writerDescription = "metaImageWriter"

type Writer struct{}

func New() *Writer {
	return &Writer{}
}

func (w *Writer) Description() string {
	return writerDescription
}

func (w *Writer) Handled() []formats.Kind {
	return []formats.Kind{formats.KindImage}
}

func (w *Writer) CanWrite(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mha")
}

// Write emits a single-file MetaImage: a text header followed by the raw
// little-endian voxel data.
func (w *Writer) Write(path string, rec *formats.Record) error {
	if rec == nil {
		return fmt.Errorf("metaimage: nil record")
	}
	// A data block shorter than DimSize declares would silently produce a
	// truncated volume, so refuse inconsistent records up front.
	if want := rec.Dims[0] * rec.Dims[1] * rec.Dims[2] * 2; len(rec.Payload) != want {
		return fmt.Errorf("metaimage: payload is %d bytes, DimSize %d %d %d needs %d",
			len(rec.Payload), rec.Dims[0], rec.Dims[1], rec.Dims[2], want)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("metaimage: create %s: %w", path, err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	fmt.Fprintln(buf, "ObjectType = Image")
	fmt.Fprintln(buf, "NDims = 3")
	fmt.Fprintf(buf, "DimSize = %d %d %d\n", rec.Dims[0], rec.Dims[1], rec.Dims[2])
	fmt.Fprintln(buf, "ElementType = MET_USHORT")
	fmt.Fprintln(buf, "BinaryData = True")
	fmt.Fprintln(buf, "BinaryDataByteOrderMSB = False")
	if rec.Meta.SliceThickness != "" {
		fmt.Fprintf(buf, "ElementSpacing = 1 1 %s\n", rec.Meta.SliceThickness)
	}
	fmt.Fprintln(buf, "ElementDataFile = LOCAL")

	if _, err := buf.Write(rec.Payload); err != nil {
		return fmt.Errorf("metaimage: write %s: %w", path, err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("metaimage: write %s: %w", path, err)
	}
	return nil
}
