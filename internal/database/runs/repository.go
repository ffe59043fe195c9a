// Package runs provides database operations for import run bookkeeping.
package runs

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/medcatalog/internal/entities"
)

// Repository handles import run rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(run *entities.ImportRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

// Get returns the run or nil when unknown.
func (r *Repository) Get(id string) (*entities.ImportRun, error) {
	var run entities.ImportRun
	err := r.db.First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns runs newest first.
func (r *Repository) List(limit int) ([]entities.ImportRun, error) {
	var list []entities.ImportRun
	q := r.db.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

// MarkStarted flips a pending run to running and stamps the start time.
func (r *Repository) MarkStarted(id string) error {
	now := time.Now().UTC()
	return r.update(id, map[string]interface{}{
		"status":     entities.ImportStatusRunning,
		"started_at": &now,
	})
}

// SetProgress persists the latest progress percentage.
func (r *Repository) SetProgress(id string, percent int) error {
	return r.update(id, map[string]interface{}{"progress": percent})
}

// MarkFinished records the terminal status, message and conflict summary.
func (r *Repository) MarkFinished(id string, status entities.ImportStatus, message, conflictSummary string) error {
	now := time.Now().UTC()
	return r.update(id, map[string]interface{}{
		"status":           status,
		"message":          message,
		"conflict_summary": conflictSummary,
		"completed_at":     &now,
	})
}

func (r *Repository) update(id string, fields map[string]interface{}) error {
	res := r.db.Model(&entities.ImportRun{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update import run %s: %w", id, res.Error)
	}
	return nil
}
