package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/medcatalog/internal/services"
)

// ImportTask executes one previously created import run.
type ImportTask struct {
	RunID string `json:"run_id"`
}

// Config returns the queue configuration for import tasks. The pipeline
// never retries on its own and every catalog write is an idempotent upsert,
// so a failed task is left for the operator rather than re-queued.
func (t ImportTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import",
		MaxAttempts: 1,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportProcessor creates a processor function for ImportTask.
func ImportProcessor(svc *services.ImportService) backlite.QueueProcessor[ImportTask] {
	return func(ctx context.Context, task ImportTask) error {
		if svc == nil {
			return fmt.Errorf("import service not configured")
		}
		if err := svc.Execute(ctx, task.RunID); err != nil {
			return fmt.Errorf("execute import run %s: %w", task.RunID, err)
		}
		return nil
	}
}

// NewImportQueue creates a backlite queue for import tasks.
func NewImportQueue(svc *services.ImportService) backlite.Queue {
	return backlite.NewQueue(ImportProcessor(svc))
}
