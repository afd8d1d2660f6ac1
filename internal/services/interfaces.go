package services

import (
	"context"

	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/importers"
)

// GiftReader provides read-only access to every stored gift.
type GiftReader interface {
	All() ([]entities.Gift, error)
}

// DonorReader provides read-only access to every stored donor.
type DonorReader interface {
	All() ([]entities.Donor, error)
}

// SnapshotStore persists dashboard history.
type SnapshotStore interface {
	Save(s *entities.MetricsSnapshot) error
	List(limit int) ([]entities.MetricsSnapshot, error)
}

// ReportStore keeps the latest insight report.
type ReportStore interface {
	GetInsightsReport() (*entities.DonationMetrics, error)
	SetInsightsReport(report *entities.DonationMetrics) error
}

// JobTracker records the progress of one background job type.
type JobTracker interface {
	Get() (*entities.JobProgress, error)
	Start(totalItems int) error
	Update(processed int, stage string) error
	Complete(succeeded bool, errorMsg string) error
	IsRunning() (bool, error)
}

// ImportAuditor writes finished import results to durable storage.
type ImportAuditor interface {
	SaveImport(source, actor string, result *importers.ImportResult) (string, error)
}

// ImportLogger records finished imports in the audit trail.
type ImportLogger interface {
	LogImport(userID uint, result *importers.ImportResult, auditFile string)
}

// InsightsLogger records insight runs in the audit trail.
type InsightsLogger interface {
	LogInsights(userID uint, description string, err error)
}

// MetricsGenerator is the insight report producer used for regeneration.
type MetricsGenerator interface {
	GenerateMetrics(ctx context.Context, records []entities.DonationRecord) (*entities.DonationMetrics, error)
}
