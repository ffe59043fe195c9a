package importer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mrlokans/medcatalog/internal/formats"
)

// ThumbnailWriter persists a record's preview images as PNGs under the
// storage root and records the representative preview's path back on the
// record for the catalog.
type ThumbnailWriter struct {
	root string
}

func NewThumbnailWriter(storageRoot string) *ThumbnailWriter {
	return &ThumbnailWriter{root: storageRoot}
}

// Generate writes one PNG per slice preview as <relDir>/<index>.png plus a
// representative <relDir>/ref.png, and returns the storage-relative slice
// paths. A record without previews yields an empty list. A directory that
// cannot be created fails the whole group.
func (t *ThumbnailWriter) Generate(rec *formats.Record, relDir string) ([]string, error) {
	absDir := filepath.Join(t.root, relDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create thumbnail directory %s: %w", absDir, err)
	}

	var paths []string
	for i, img := range rec.Thumbnails {
		rel := filepath.Join(relDir, strconv.Itoa(i)+".png")
		if err := writePNG(filepath.Join(t.root, rel), img); err != nil {
			return nil, err
		}
		paths = append(paths, rel)
	}

	if rec.Thumbnail != nil {
		rel := filepath.Join(relDir, "ref.png")
		if err := writePNG(filepath.Join(t.root, rel), rec.Thumbnail); err != nil {
			return nil, err
		}
		rec.Meta.ThumbnailPath = rel
	}

	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create thumbnail %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("cannot encode thumbnail %s: %w", path, err)
	}
	return nil
}
