// Package scheduler runs periodic background jobs.
package scheduler

import (
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/medcatalog/internal/config"
	"github.com/mrlokans/medcatalog/internal/services"
	"github.com/mrlokans/medcatalog/internal/tasks"
)

// WatchScanScheduler periodically scans a configured incoming directory and
// enqueues an import run for it. Already-cataloged files are deduplicated by
// the pipeline itself, so re-scanning an unchanged directory is a no-op run.
type WatchScanScheduler struct {
	cfg     config.Watch
	imports *services.ImportService
	queue   *tasks.Client

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewWatchScanScheduler(cfg config.Watch, imports *services.ImportService, queue *tasks.Client) *WatchScanScheduler {
	return &WatchScanScheduler{
		cfg:     cfg,
		imports: imports,
		queue:   queue,
		cron:    cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if watching is enabled.
func (s *WatchScanScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Watch scan scheduler: disabled")
		return nil
	}
	if s.cfg.Dir == "" {
		log.Printf("Watch scan scheduler: watch directory not configured, skipping")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Schedule, s.scan)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Watch scan scheduler: scanning %s on schedule %q", s.cfg.Dir, s.cfg.Schedule)
	return nil
}

// Stop halts future scans; a scan already enqueued keeps running.
func (s *WatchScanScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	s.cron.Stop()
	s.isRunning = false
}

func (s *WatchScanScheduler) scan() {
	run, err := s.imports.CreateRun(s.cfg.Dir, s.cfg.IndexOnly)
	if err != nil {
		log.Printf("Watch scan: cannot create run for %s: %v", s.cfg.Dir, err)
		return
	}
	if _, err := s.queue.Add(tasks.ImportTask{RunID: run.ID}).Save(); err != nil {
		log.Printf("Watch scan: cannot enqueue run %s: %v", run.ID, err)
		return
	}
	log.Printf("Watch scan: enqueued run %s for %s", run.ID, s.cfg.Dir)
}
