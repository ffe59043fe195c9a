package importer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/mrlokans/medcatalog/internal/formats"
)

// Outcome is the terminal state of one pipeline run.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ConflictRecord identifies a series that was skipped because an identical
// one is already cataloged.
type ConflictRecord struct {
	Patient    string
	Study      string
	Series     string
	SamplePath string
}

// Result is the terminal report of a run. SeriesIDs references the series
// ingested by this run, for immediate display by the caller; it is empty on
// failure and cancellation.
type Result struct {
	Outcome   Outcome
	Message   string
	Conflicts []ConflictRecord
	SeriesIDs []uint
}

// Catalog is the slice of the catalog repository the pipeline needs.
type Catalog interface {
	SeriesExists(m *formats.Metadata) (bool, error)
	ImageExists(m *formats.Metadata, imageName string) (bool, error)
	GetOrCreatePatient(m *formats.Metadata) (uint, error)
	GetOrCreateStudy(m *formats.Metadata, patientID uint) (uint, error)
	GetOrCreateSeries(m *formats.Metadata, studyID uint, indexOnly bool) (uint, error)
	CreateMissingImages(m *formats.Metadata, seriesID uint, thumbPaths []string, indexOnly bool) error
}

// JobConfig carries a Job's collaborators.
type JobConfig struct {
	Path        string
	IndexOnly   bool
	Registry    *formats.Registry
	Catalog     Catalog
	StorageRoot string
	Gate        *Gate
	// Progress receives a monotonically non-decreasing 0-100 percentage.
	// Called from the run's own goroutine; must not block. Optional.
	Progress func(percent int)
}

// Job is the run-scoped state of one pipeline invocation: target, mode,
// cancellation flag, the per-run sticky format resolver and the accumulated
// conflict reports.
type Job struct {
	path        string
	indexOnly   bool
	resolver    *formats.Resolver
	catalog     Catalog
	storageRoot string
	thumbnails  *ThumbnailWriter
	gate        *Gate
	progress    func(int)

	cancelled    atomic.Bool
	lastProgress int
	conflicts    []ConflictRecord
}

func NewJob(cfg JobConfig) *Job {
	return &Job{
		path:        cfg.Path,
		indexOnly:   cfg.IndexOnly,
		resolver:    formats.NewResolver(cfg.Registry),
		catalog:     cfg.Catalog,
		storageRoot: cfg.StorageRoot,
		thumbnails:  NewThumbnailWriter(cfg.StorageRoot),
		gate:        cfg.Gate,
		progress:    cfg.Progress,
	}
}

// Cancel requests cooperative cancellation. It is safe to call from any
// goroutine; the run honors it at the next per-file poll.
func (j *Job) Cancel() {
	j.cancelled.Store(true)
}

// Run executes the two-pass ingestion and returns its terminal result.
// It holds the run gate for the whole invocation.
func (j *Job) Run(ctx context.Context) Result {
	if j.gate != nil {
		if err := j.gate.Acquire(ctx); err != nil {
			return Result{Outcome: OutcomeCancelled, Message: "import aborted while waiting to start: " + err.Error()}
		}
		defer j.gate.Release()
	}

	groups, order := j.discoverAndFilter()

	if j.cancelled.Load() {
		log.Printf("import of %s cancelled by user", j.path)
		return Result{Outcome: OutcomeCancelled, Message: "user cancelled import process", Conflicts: j.conflicts}
	}

	if len(order) == 0 {
		return Result{
			Outcome: OutcomeFailure,
			Message: "no compatible image found or all of them had been already imported",
		}
	}

	seriesIDs := j.aggregateAndCommit(groups, order)

	if j.cancelled.Load() {
		log.Printf("import of %s cancelled by user", j.path)
		return Result{
			Outcome:   OutcomeCancelled,
			Message:   "user cancelled import process",
			Conflicts: j.conflicts,
			SeriesIDs: seriesIDs,
		}
	}

	j.report(100)

	return Result{
		Outcome:   OutcomeSuccess,
		Message:   j.conflictSummary(),
		Conflicts: j.conflicts,
		SeriesIDs: seriesIDs,
	}
}

// discoverAndFilter is the first pass: header-decode every candidate file,
// group readable ones by volume key and drop files already cataloged.
// Reports progress 0-50.
func (j *Job) discoverAndFilter() (map[string][]string, []string) {
	files := ExpandPath(j.path)

	groups := make(map[string][]string)
	var order []string

	volumeNumbers := make(map[string]int)
	nextVolume := 1

	for i, file := range files {
		if j.cancelled.Load() {
			break
		}

		j.report(i * 50 / len(files))

		rec, err := j.tryRead([]string{file}, true)
		if err != nil {
			log.Printf("unable to read %s: %v", file, err)
			continue
		}

		Normalize(&rec.Meta, baseName(file))

		key := VolumeKey(&rec.Meta)
		number, seen := volumeNumbers[key]
		if !seen {
			number = nextVolume
			volumeNumbers[key] = number
			nextVolume++
		}

		name := AggregatedName(&rec.Meta, number)
		ext := OutputExtension(rec.Kind)
		if !j.indexOnly && ext == "" {
			log.Printf("cannot store %s: unhandled data kind %q", file, rec.Kind)
			continue
		}
		name += ext

		exists, err := j.catalog.ImageExists(&rec.Meta, filepath.Base(file))
		if err != nil {
			log.Printf("catalog lookup for %s failed: %v", file, err)
			continue
		}
		if exists {
			continue
		}

		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], file)
	}

	return groups, order
}

// aggregateAndCommit is the second pass: full-decode each group, dedupe the
// aggregated record against the catalog, write storage output and
// thumbnails, and upsert the catalog hierarchy. Reports progress 50-100.
// Cancellation is polled between groups only, so a group's writes are never
// left half-applied.
func (j *Job) aggregateAndCommit(groups map[string][]string, order []string) []uint {
	var seriesIDs []uint

	for idx, name := range order {
		if j.cancelled.Load() {
			break
		}

		j.report(50 + idx*50/len(order))

		paths := groups[name]

		rec, err := j.tryRead(paths, false)
		if err != nil {
			log.Printf("could not read data: %s: %v", paths[0], err)
			continue
		}

		Normalize(&rec.Meta, strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
		j.attachRunMetadata(rec, name, paths)

		duplicate, err := j.catalog.SeriesExists(&rec.Meta)
		if err != nil {
			log.Printf("conflict check for %s failed: %v", name, err)
			continue
		}
		if duplicate {
			j.conflicts = append(j.conflicts, ConflictRecord{
				Patient:    Collapse(rec.Meta.PatientName),
				Study:      Collapse(rec.Meta.StudyDescription),
				Series:     Collapse(rec.Meta.SeriesDescription),
				SamplePath: paths[0],
			})
			continue
		}

		if !j.indexOnly {
			if err := j.writeAggregated(name, rec); err != nil {
				log.Printf("could not save data file %s: %v", paths[0], err)
				continue
			}
		}

		thumbDir := filepath.Join(filepath.Dir(name), strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
		thumbPaths, err := j.thumbnails.Generate(rec, thumbDir)
		if err != nil {
			log.Printf("thumbnail generation for %s failed: %v", name, err)
			continue
		}

		seriesID, err := j.populateCatalog(rec, thumbPaths)
		if err != nil {
			log.Printf("catalog write for %s failed: %v", name, err)
			continue
		}
		seriesIDs = append(seriesIDs, seriesID)
	}

	return seriesIDs
}

// tryRead resolves a capable reader and decodes, header-only or fully.
func (j *Job) tryRead(paths []string, headerOnly bool) (*formats.Record, error) {
	reader := j.resolver.Reader(paths)
	if reader == nil {
		return nil, fmt.Errorf("no suitable reader found")
	}
	if headerOnly {
		return reader.ReadInformation(paths)
	}
	return reader.Read(paths)
}

// attachRunMetadata records the aggregation facts the catalog stores: the
// slice count, the source file list and the aggregated output name.
func (j *Job) attachRunMetadata(rec *formats.Record, name string, paths []string) {
	if rec.Kind == formats.KindImage || rec.Kind == formats.KindVistalImage {
		rec.Meta.Size = strconv.Itoa(rec.Dims[2])
	} else {
		rec.Meta.Size = ""
	}
	if rec.Meta.FilePaths == nil {
		rec.Meta.FilePaths = paths
	}
	rec.Meta.FileName = name
}

// writeAggregated creates the destination directory under the storage root
// and encodes the aggregated record through the resolved writer.
func (j *Job) writeAggregated(name string, rec *formats.Record) error {
	dst := filepath.Join(j.storageRoot, name)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", filepath.Dir(dst), err)
	}

	writer := j.resolver.Writer(dst, rec)
	if writer == nil {
		return fmt.Errorf("no suitable writer found for %s", dst)
	}
	if err := writer.Write(dst, rec); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

// populateCatalog runs the hierarchy upserts in strict order.
func (j *Job) populateCatalog(rec *formats.Record, thumbPaths []string) (uint, error) {
	patientID, err := j.catalog.GetOrCreatePatient(&rec.Meta)
	if err != nil {
		return 0, err
	}
	studyID, err := j.catalog.GetOrCreateStudy(&rec.Meta, patientID)
	if err != nil {
		return 0, err
	}
	seriesID, err := j.catalog.GetOrCreateSeries(&rec.Meta, studyID, j.indexOnly)
	if err != nil {
		return 0, err
	}
	if err := j.catalog.CreateMissingImages(&rec.Meta, seriesID, thumbPaths, j.indexOnly); err != nil {
		return 0, err
	}
	return seriesID, nil
}

// report forwards a progress percentage, clamped so consumers only ever see
// it grow.
func (j *Job) report(percent int) {
	if percent < j.lastProgress {
		percent = j.lastProgress
	}
	j.lastProgress = percent
	if j.progress != nil {
		j.progress(percent)
	}
}

// conflictSummary renders the end-of-run duplicate report, empty when the
// run saw no duplicates.
func (j *Job) conflictSummary() string {
	if len(j.conflicts) == 0 {
		return ""
	}

	process := "import"
	if j.indexOnly {
		process = "index"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "It seems you are trying to %s some images that belong to a volume which is already in the database.\n", process)
	fmt.Fprintf(&b, "For a more accurate %s please first delete the following series:\n\n", process)
	for _, c := range j.conflicts {
		fmt.Fprintf(&b, "Series: %s (from patient: %s and study: %s), e.g. %s\n", c.Series, c.Patient, c.Study, c.SamplePath)
	}
	return b.String()
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
