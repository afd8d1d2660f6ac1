// Package jobs tracks the progress of background jobs, one row per job type.
//
// # Usage
//
//	repo := jobs.NewRepository(db, entities.JobTypeInsights)
//	err := repo.Start(1)
package jobs

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/givin-app/givin/internal/entities"
)

// staleAfter is how long a running job may go without an update before it
// is treated as interrupted.
const staleAfter = 10 * time.Minute

// Repository handles job progress for a single job type.
type Repository struct {
	db      *gorm.DB
	jobType entities.JobType
	now     func() time.Time
}

// NewRepository creates a job progress repository for jobType.
func NewRepository(db *gorm.DB, jobType entities.JobType) *Repository {
	return &Repository{db: db, jobType: jobType, now: time.Now}
}

// Get retrieves the progress row, or gorm.ErrRecordNotFound if the job never ran.
func (r *Repository) Get() (*entities.JobProgress, error) {
	var progress entities.JobProgress
	err := r.db.Where("job_type = ?", r.jobType).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// Start creates or resets the progress row.
func (r *Repository) Start(totalItems int) error {
	var progress entities.JobProgress
	result := r.db.Where("job_type = ?", r.jobType).First(&progress)

	now := r.now()
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		progress = entities.JobProgress{
			JobType:    r.jobType,
			Status:     entities.JobStatusRunning,
			TotalItems: totalItems,
			StartedAt:  now,
			UpdatedAt:  now,
		}
		return r.db.Create(&progress).Error
	} else if result.Error != nil {
		return result.Error
	}

	progress.Status = entities.JobStatusRunning
	progress.TotalItems = totalItems
	progress.Processed = 0
	progress.Stage = ""
	progress.Error = ""
	progress.StartedAt = now
	progress.UpdatedAt = now
	progress.CompletedAt = nil

	return r.db.Save(&progress).Error
}

// Update records how far the running job got.
func (r *Repository) Update(processed int, stage string) error {
	return r.db.Model(&entities.JobProgress{}).
		Where("job_type = ?", r.jobType).
		Updates(map[string]any{
			"processed":  processed,
			"stage":      stage,
			"updated_at": r.now(),
		}).Error
}

// Complete marks the job as completed or failed.
func (r *Repository) Complete(succeeded bool, errorMsg string) error {
	now := r.now()
	status := entities.JobStatusCompleted
	if !succeeded {
		status = entities.JobStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"stage":        "",
		"updated_at":   now,
		"completed_at": now,
		"error":        errorMsg,
	}
	return r.db.Model(&entities.JobProgress{}).
		Where("job_type = ?", r.jobType).
		Updates(updates).Error
}

// IsRunning reports whether the job is in progress. A running row that has
// not been updated within staleAfter is marked failed and reported idle.
func (r *Repository) IsRunning() (bool, error) {
	var progress entities.JobProgress
	err := r.db.Where("job_type = ? AND status = ?", r.jobType, entities.JobStatusRunning).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if progress.UpdatedAt.Before(r.now().Add(-staleAfter)) {
		_ = r.Complete(false, "job was interrupted")
		return false, nil
	}

	return true, nil
}
