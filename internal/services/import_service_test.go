package services

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/medcatalog/internal/database/catalog"
	"github.com/mrlokans/medcatalog/internal/database/runs"
	"github.com/mrlokans/medcatalog/internal/entities"
	"github.com/mrlokans/medcatalog/internal/formats"
)

// stubReader accepts any .img file and reports a fixed single-frame image.
type stubReader struct{}

func (r *stubReader) Description() string { return "stubReader" }

func (r *stubReader) CanRead(paths []string) bool {
	for _, p := range paths {
		if !strings.HasSuffix(p, ".img") {
			return false
		}
	}
	return len(paths) > 0
}

func (r *stubReader) ReadInformation(paths []string) (*formats.Record, error) {
	return &formats.Record{
		Kind: formats.KindImage,
		Meta: formats.Metadata{
			PatientName:       "DOE JOHN",
			StudyDescription:  "study",
			SeriesDescription: "scan",
			StudyUID:          "1.2.3",
			SeriesUID:         "1.2.3.4",
			Orientation:       "1 0 0 0 1 0",
			Rows:              "4",
			Columns:           "4",
		},
	}, nil
}

func (r *stubReader) Read(paths []string) (*formats.Record, error) {
	rec, _ := r.ReadInformation(paths)
	rec.Payload = make([]byte, 4*4*2*len(paths))
	rec.Dims = [3]int{4, 4, len(paths)}
	rec.Meta.FilePaths = append([]string(nil), paths...)
	for range paths {
		rec.Thumbnails = append(rec.Thumbnails, image.NewGray(image.Rect(0, 0, 4, 4)))
	}
	rec.Thumbnail = rec.Thumbnails[0]
	return rec, nil
}

type stubWriter struct{}

func (w *stubWriter) Description() string     { return "stubWriter" }
func (w *stubWriter) Handled() []formats.Kind { return []formats.Kind{formats.KindImage} }

func (w *stubWriter) CanWrite(path string) bool { return strings.HasSuffix(path, ".mha") }

func (w *stubWriter) Write(path string, rec *formats.Record) error {
	return os.WriteFile(path, rec.Payload, 0o644)
}

func setupService(t *testing.T) (*ImportService, func()) {
	dbPath := "./test_service_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Patient{},
		&entities.Study{},
		&entities.Series{},
		&entities.Image{},
		&entities.ImportRun{},
	)
	require.NoError(t, err)

	registry := formats.NewRegistry()
	registry.RegisterReader(&stubReader{})
	registry.RegisterWriter(&stubWriter{})

	runsRepo := runs.NewRepository(db)
	svc := NewImportService(runsRepo, catalog.NewRepository(db), registry, t.TempDir())

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return svc, cleanup
}

func TestImportService_CreateRun(t *testing.T) {
	svc, cleanup := setupService(t)
	defer cleanup()

	dir := t.TempDir()

	run, err := svc.CreateRun(dir, true)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, dir, run.TargetPath)
	assert.True(t, run.IndexOnly)
	assert.Equal(t, entities.ImportStatusPending, run.Status)

	persisted, err := svc.Run(run.ID)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, run.TargetPath, persisted.TargetPath)
}

func TestImportService_CreateRun_MissingTarget(t *testing.T) {
	svc, cleanup := setupService(t)
	defer cleanup()

	_, err := svc.CreateRun(filepath.Join(t.TempDir(), "nope"), false)
	assert.Error(t, err)
}

func TestImportService_Execute_Success(t *testing.T) {
	svc, cleanup := setupService(t)
	defer cleanup()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slice_1.img"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slice_2.img"), []byte("x"), 0o644))

	run, err := svc.CreateRun(dir, false)
	require.NoError(t, err)

	require.NoError(t, svc.Execute(context.Background(), run.ID))

	finished, err := svc.Run(run.ID)
	require.NoError(t, err)
	require.NotNil(t, finished)
	assert.Equal(t, entities.ImportStatusSuccess, finished.Status)
	assert.Equal(t, 100, finished.Progress)
	assert.Equal(t, "imported 1 series", finished.Message)
	require.NotNil(t, finished.StartedAt)
	require.NotNil(t, finished.CompletedAt)
}

func TestImportService_Execute_EmptyTargetIsFailure(t *testing.T) {
	svc, cleanup := setupService(t)
	defer cleanup()

	run, err := svc.CreateRun(t.TempDir(), false)
	require.NoError(t, err)

	require.NoError(t, svc.Execute(context.Background(), run.ID))

	finished, err := svc.Run(run.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusFailure, finished.Status)
	assert.Contains(t, finished.Message, "no compatible image found")
}

func TestImportService_Execute_UnknownRun(t *testing.T) {
	svc, cleanup := setupService(t)
	defer cleanup()

	assert.Error(t, svc.Execute(context.Background(), "missing"))
}

func TestImportService_Cancel_NotRunning(t *testing.T) {
	svc, cleanup := setupService(t)
	defer cleanup()

	assert.Error(t, svc.Cancel("missing"))
}

func TestImportService_Runs(t *testing.T) {
	svc, cleanup := setupService(t)
	defer cleanup()

	dir := t.TempDir()
	_, err := svc.CreateRun(dir, false)
	require.NoError(t, err)
	_, err = svc.CreateRun(dir, true)
	require.NoError(t, err)

	list, err := svc.Runs(10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
