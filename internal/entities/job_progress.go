package entities

import (
	"time"
)

type JobType string

const (
	JobTypeInsights        JobType = "insights"
	JobTypeMetricsSnapshot JobType = "metrics_snapshot"
)

type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobProgress tracks the latest run of a background job, one row per job type.
type JobProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	JobType     JobType    `gorm:"size:50;uniqueIndex" json:"job_type"`
	Status      JobStatus  `gorm:"size:20" json:"status"`
	TotalItems  int        `json:"total_items"`
	Processed   int        `json:"processed"`
	Stage       string     `gorm:"size:255" json:"stage,omitempty"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (JobProgress) TableName() string {
	return "job_progress"
}
