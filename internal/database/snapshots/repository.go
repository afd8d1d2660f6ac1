// Package snapshots stores the dashboard history written by the metrics
// snapshot scheduler.
package snapshots

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/givin-app/givin/internal/entities"
)

var ErrNoSnapshots = errors.New("no metrics snapshots recorded")

const defaultLimit = 30

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Save(s *entities.MetricsSnapshot) error {
	if s.TakenAt.IsZero() {
		s.TakenAt = time.Now()
	}
	return r.db.Create(s).Error
}

// List returns the most recent snapshots first.
func (r *Repository) List(limit int) ([]entities.MetricsSnapshot, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	var snaps []entities.MetricsSnapshot
	err := r.db.Order("taken_at DESC, id DESC").Limit(limit).Find(&snaps).Error
	return snaps, err
}

func (r *Repository) Latest() (*entities.MetricsSnapshot, error) {
	var s entities.MetricsSnapshot
	err := r.db.Order("taken_at DESC, id DESC").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSnapshots
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteOlderThan removes snapshots taken before the cutoff.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("taken_at < ?", cutoff).Delete(&entities.MetricsSnapshot{})
	return result.RowsAffected, result.Error
}
