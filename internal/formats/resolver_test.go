package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader reads paths with a given suffix and counts capability probes.
type fakeReader struct {
	name       string
	suffix     string
	probeCount int
}

func (f *fakeReader) Description() string { return f.name }

func (f *fakeReader) CanRead(paths []string) bool {
	f.probeCount++
	for _, p := range paths {
		if !strings.HasSuffix(p, f.suffix) {
			return false
		}
	}
	return len(paths) > 0
}

func (f *fakeReader) ReadInformation(paths []string) (*Record, error) {
	return &Record{Kind: KindImage}, nil
}

func (f *fakeReader) Read(paths []string) (*Record, error) {
	return &Record{Kind: KindImage}, nil
}

type fakeWriter struct {
	name    string
	kinds   []Kind
	suffix  string
	written []string
}

func (f *fakeWriter) Description() string { return f.name }
func (f *fakeWriter) Handled() []Kind     { return f.kinds }

func (f *fakeWriter) CanWrite(path string) bool {
	return strings.HasSuffix(path, f.suffix)
}

func (f *fakeWriter) Write(path string, rec *Record) error {
	f.written = append(f.written, path)
	return nil
}

func TestResolver_Reader_RegistrationOrderWins(t *testing.T) {
	reg := NewRegistry()
	a := &fakeReader{name: "a", suffix: ".dcm"}
	b := &fakeReader{name: "b", suffix: ".dcm"}
	reg.RegisterReader(a)
	reg.RegisterReader(b)

	r := NewResolver(reg)
	got := r.Reader([]string{"/data/x.dcm"})

	require.NotNil(t, got)
	assert.Equal(t, "a", got.Description())
}

func TestResolver_Reader_StickyCacheSkipsScan(t *testing.T) {
	reg := NewRegistry()
	a := &fakeReader{name: "a", suffix: ".nii"}
	b := &fakeReader{name: "b", suffix: ".dcm"}
	reg.RegisterReader(a)
	reg.RegisterReader(b)

	r := NewResolver(reg)

	got := r.Reader([]string{"/data/x.dcm"})
	require.NotNil(t, got)
	assert.Equal(t, "b", got.Description())

	// The second resolution should hit the sticky entry without probing
	// the full registry again.
	aProbes := a.probeCount
	got = r.Reader([]string{"/data/y.dcm"})
	require.NotNil(t, got)
	assert.Equal(t, "b", got.Description())
	assert.Equal(t, aProbes, a.probeCount)
}

func TestResolver_Reader_FullScanOnFormatChange(t *testing.T) {
	reg := NewRegistry()
	a := &fakeReader{name: "a", suffix: ".nii"}
	b := &fakeReader{name: "b", suffix: ".dcm"}
	reg.RegisterReader(a)
	reg.RegisterReader(b)

	r := NewResolver(reg)

	require.Equal(t, "b", r.Reader([]string{"/data/x.dcm"}).Description())
	require.Equal(t, "a", r.Reader([]string{"/data/x.nii"}).Description())
	// Cache follows the most recent success.
	require.Equal(t, "a", r.Reader([]string{"/data/y.nii"}).Description())
}

func TestResolver_Reader_NotFound(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterReader(&fakeReader{name: "a", suffix: ".dcm"})

	r := NewResolver(reg)
	assert.Nil(t, r.Reader([]string{"/data/notes.txt"}))
}

func TestResolver_Writer_MatchesKindAndPath(t *testing.T) {
	reg := NewRegistry()
	mesh := &fakeWriter{name: "mesh", kinds: []Kind{KindMesh}, suffix: ".vtk"}
	img := &fakeWriter{name: "img", kinds: []Kind{KindImage}, suffix: ".mha"}
	reg.RegisterWriter(mesh)
	reg.RegisterWriter(img)

	r := NewResolver(reg)

	got := r.Writer("/store/p/s/series1.mha", &Record{Kind: KindImage})
	require.NotNil(t, got)
	assert.Equal(t, "img", got.Description())

	// Kind mismatch even though the path matches.
	assert.Nil(t, r.Writer("/store/p/s/series1.mha", &Record{Kind: KindMesh}))
	assert.Nil(t, r.Writer("/store/p/s/series1.vtk", nil))
}
