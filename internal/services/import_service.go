// Package services holds the business logic between the HTTP/CLI surfaces
// and the importer pipeline.
package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/mrlokans/medcatalog/internal/database/catalog"
	"github.com/mrlokans/medcatalog/internal/database/runs"
	"github.com/mrlokans/medcatalog/internal/entities"
	"github.com/mrlokans/medcatalog/internal/formats"
	"github.com/mrlokans/medcatalog/internal/importer"
)

// ImportService creates import runs, executes them through the pipeline and
// exposes cancellation for the ones currently running.
type ImportService struct {
	runs        *runs.Repository
	catalog     *catalog.Repository
	registry    *formats.Registry
	storageRoot string
	gate        *importer.Gate

	mu     sync.Mutex
	active map[string]*importer.Job
}

func NewImportService(runsRepo *runs.Repository, catalogRepo *catalog.Repository, registry *formats.Registry, storageRoot string) *ImportService {
	return &ImportService{
		runs:        runsRepo,
		catalog:     catalogRepo,
		registry:    registry,
		storageRoot: storageRoot,
		gate:        importer.NewGate(),
		active:      make(map[string]*importer.Job),
	}
}

// CreateRun registers a pending run for the given target. The actual work
// happens later in Execute, typically from a queue worker.
func (s *ImportService) CreateRun(path string, indexOnly bool) (*entities.ImportRun, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("target path %s is not accessible: %w", path, err)
	}

	run := &entities.ImportRun{
		ID:         uuid.NewString(),
		TargetPath: path,
		IndexOnly:  indexOnly,
		Status:     entities.ImportStatusPending,
	}
	if err := s.runs.Create(run); err != nil {
		return nil, err
	}
	return run, nil
}

// Execute runs one pending import to completion, keeping the run row's
// progress and terminal state current. Blocks for the whole run.
func (s *ImportService) Execute(ctx context.Context, runID string) error {
	run, err := s.runs.Get(runID)
	if err != nil {
		return fmt.Errorf("load run %s: %w", runID, err)
	}
	if run == nil {
		return fmt.Errorf("import run %s not found", runID)
	}

	lastPersisted := -1
	job := importer.NewJob(importer.JobConfig{
		Path:        run.TargetPath,
		IndexOnly:   run.IndexOnly,
		Registry:    s.registry,
		Catalog:     s.catalog,
		StorageRoot: s.storageRoot,
		Gate:        s.gate,
		Progress: func(percent int) {
			if percent == lastPersisted {
				return
			}
			lastPersisted = percent
			if err := s.runs.SetProgress(runID, percent); err != nil {
				log.Printf("persist progress for run %s: %v", runID, err)
			}
		},
	})

	s.mu.Lock()
	s.active[runID] = job
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.active, runID)
		s.mu.Unlock()
	}()

	if err := s.runs.MarkStarted(runID); err != nil {
		return err
	}

	result := job.Run(ctx)

	status := entities.ImportStatusSuccess
	switch result.Outcome {
	case importer.OutcomeFailure:
		status = entities.ImportStatusFailure
	case importer.OutcomeCancelled:
		status = entities.ImportStatusCancelled
	}

	conflictSummary := ""
	if result.Outcome == importer.OutcomeSuccess {
		conflictSummary = result.Message
	}
	message := result.Message
	if result.Outcome == importer.OutcomeSuccess {
		message = fmt.Sprintf("imported %d series", len(result.SeriesIDs))
	}

	if err := s.runs.MarkFinished(runID, status, message, conflictSummary); err != nil {
		return err
	}

	log.Printf("import run %s finished: %s (%d series, %d conflicts)",
		runID, result.Outcome, len(result.SeriesIDs), len(result.Conflicts))
	return nil
}

// Cancel requests cooperative cancellation of a running import. Unknown or
// already-finished runs report an error.
func (s *ImportService) Cancel(runID string) error {
	s.mu.Lock()
	job, ok := s.active[runID]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("import run %s is not running", runID)
	}
	job.Cancel()
	return nil
}

// Run returns the persisted state of a run, nil when unknown.
func (s *ImportService) Run(runID string) (*entities.ImportRun, error) {
	return s.runs.Get(runID)
}

// Runs lists persisted runs, newest first.
func (s *ImportService) Runs(limit int) ([]entities.ImportRun, error) {
	return s.runs.List(limit)
}
