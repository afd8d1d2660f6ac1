package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/metrics"
)

// DashboardService computes the dashboard from the stored gifts and donors
// and keeps its history.
type DashboardService struct {
	gifts     GiftReader
	donors    DonorReader
	snapshots SnapshotStore
	opts      metrics.Options
	now       func() time.Time
}

// NewDashboardService creates a dashboard service. snapshots may be nil when
// history is not needed (CLI).
func NewDashboardService(gifts GiftReader, donors DonorReader, snapshots SnapshotStore, opts metrics.Options) *DashboardService {
	return &DashboardService{
		gifts:     gifts,
		donors:    donors,
		snapshots: snapshots,
		opts:      opts,
		now:       time.Now,
	}
}

// Current computes the dashboard as of now.
func (s *DashboardService) Current() (metrics.Snapshot, error) {
	return s.At(s.now())
}

// At computes the dashboard as of the given instant.
func (s *DashboardService) At(now time.Time) (metrics.Snapshot, error) {
	gifts, err := s.gifts.All()
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("failed to load gifts: %w", err)
	}
	donors, err := s.donors.All()
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("failed to load donors: %w", err)
	}
	return metrics.Compute(gifts, donors, now, s.opts), nil
}

// TakeSnapshot computes the current dashboard and stores its headline figures.
func (s *DashboardService) TakeSnapshot() (*entities.MetricsSnapshot, error) {
	if s.snapshots == nil {
		return nil, fmt.Errorf("snapshot storage not configured")
	}

	snap, err := s.Current()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	row := &entities.MetricsSnapshot{
		TakenAt:            snap.GeneratedAt,
		TotalDonationsMTD:  snap.TotalDonationsMTD,
		TotalDonorPool:     snap.TotalDonorPool,
		AverageDonation:    snap.AverageDonationAmount,
		RecurringDonations: snap.RecurringDonations,
		LybuntCount:        len(snap.LybuntDonors),
		SybuntCount:        len(snap.SybuntDonors),
		Payload:            string(payload),
	}
	if err := s.snapshots.Save(row); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	log.Printf("Metrics snapshot: stored #%d (MTD %s, %d donors)", row.ID, row.TotalDonationsMTD.StringFixed(2), row.TotalDonorPool)
	return row, nil
}

// History returns stored snapshots, newest first.
func (s *DashboardService) History(limit int) ([]entities.MetricsSnapshot, error) {
	if s.snapshots == nil {
		return []entities.MetricsSnapshot{}, nil
	}
	return s.snapshots.List(limit)
}
