package importer

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/medcatalog/internal/formats"
)

func grayImage() image.Image {
	return image.NewGray(image.Rect(0, 0, 4, 4))
}

func TestThumbnailWriter_Generate(t *testing.T) {
	root := t.TempDir()
	w := NewThumbnailWriter(root)

	rec := &formats.Record{
		Thumbnails: []image.Image{grayImage(), grayImage(), grayImage()},
		Thumbnail:  grayImage(),
	}

	paths, err := w.Generate(rec, filepath.Join("pat", "study", "scan1"))

	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join("pat", "study", "scan1", "0.png"), paths[0])
	assert.Equal(t, filepath.Join("pat", "study", "scan1", "2.png"), paths[2])

	for _, rel := range paths {
		_, err := os.Stat(filepath.Join(root, rel))
		assert.NoError(t, err)
	}

	// Representative preview is written and recorded on the metadata.
	assert.Equal(t, filepath.Join("pat", "study", "scan1", "ref.png"), rec.Meta.ThumbnailPath)
	_, err = os.Stat(filepath.Join(root, rec.Meta.ThumbnailPath))
	assert.NoError(t, err)
}

func TestThumbnailWriter_NoPreviews(t *testing.T) {
	w := NewThumbnailWriter(t.TempDir())

	paths, err := w.Generate(&formats.Record{}, "pat/study/scan1")

	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestThumbnailWriter_UnwritableDirFailsGroup(t *testing.T) {
	root := t.TempDir()
	// A regular file where the thumbnail directory should go makes
	// MkdirAll fail.
	require.NoError(t, os.WriteFile(filepath.Join(root, "blocked"), []byte("x"), 0o644))

	w := NewThumbnailWriter(root)
	rec := &formats.Record{Thumbnails: []image.Image{grayImage()}}

	_, err := w.Generate(rec, filepath.Join("blocked", "scan1"))

	assert.Error(t, err)
}
