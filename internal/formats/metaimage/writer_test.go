package metaimage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/medcatalog/internal/formats"
)

func TestWriter_CanWrite(t *testing.T) {
	w := New()

	assert.True(t, w.CanWrite("/data/pat/study/scan1.mha"))
	assert.True(t, w.CanWrite("/data/SCAN.MHA"))
	assert.False(t, w.CanWrite("/data/scan1.vtk"))
	assert.False(t, w.CanWrite("/data/scan1"))
}

func TestWriter_Handled(t *testing.T) {
	assert.Equal(t, []formats.Kind{formats.KindImage}, New().Handled())
}

func TestWriter_Write(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "scan1.mha")

	payload := []byte{0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04, 0x00}
	rec := &formats.Record{
		Kind:    formats.KindImage,
		Payload: payload,
		Dims:    [3]int{2, 2, 1},
		Meta:    formats.Metadata{SliceThickness: "1.5"},
	}

	require.NoError(t, New().Write(dst, rec))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "ObjectType = Image\n")
	assert.Contains(t, text, "NDims = 3\n")
	assert.Contains(t, text, "DimSize = 2 2 1\n")
	assert.Contains(t, text, "ElementType = MET_USHORT\n")
	assert.Contains(t, text, "ElementSpacing = 1 1 1.5\n")
	assert.Contains(t, text, "ElementDataFile = LOCAL\n")

	// Raw voxel bytes follow the header verbatim.
	assert.True(t, strings.HasSuffix(text, "ElementDataFile = LOCAL\n"+string(payload)))
}

func TestWriter_Write_NoSpacingWithoutThickness(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "scan1.mha")

	rec := &formats.Record{
		Kind:    formats.KindImage,
		Payload: []byte{0x01, 0x00},
		Dims:    [3]int{1, 1, 1},
	}
	require.NoError(t, New().Write(dst, rec))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ElementSpacing")
}

func TestWriter_Write_PayloadDimsMismatch(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "scan1.mha")

	// DimSize declares 2x2x2 voxels but only one slice of data is present.
	rec := &formats.Record{
		Kind:    formats.KindImage,
		Payload: make([]byte, 2*2*2),
		Dims:    [3]int{2, 2, 2},
	}

	err := New().Write(dst, rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload")

	// Nothing half-written is left behind.
	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriter_Write_NilRecord(t *testing.T) {
	assert.Error(t, New().Write(filepath.Join(t.TempDir(), "x.mha"), nil))
}
