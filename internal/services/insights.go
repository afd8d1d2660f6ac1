package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/givin-app/givin/internal/entities"
)

var ErrInsightsRunning = errors.New("insight generation is already running")

// InsightsService regenerates the insight report over every stored gift.
type InsightsService struct {
	gifts     GiftReader
	generator MetricsGenerator
	reports   ReportStore
	jobs      JobTracker
	audit     InsightsLogger
}

// NewInsightsService creates the service. audit may be nil.
func NewInsightsService(gifts GiftReader, generator MetricsGenerator, reports ReportStore, jobs JobTracker, audit InsightsLogger) *InsightsService {
	return &InsightsService{
		gifts:     gifts,
		generator: generator,
		reports:   reports,
		jobs:      jobs,
		audit:     audit,
	}
}

// Regenerate builds a new report and stores it as the latest one. It refuses
// to start while another run is in progress.
func (s *InsightsService) Regenerate(ctx context.Context, userID uint) (*entities.DonationMetrics, error) {
	running, err := s.jobs.IsRunning()
	if err != nil {
		return nil, fmt.Errorf("failed to check job status: %w", err)
	}
	if running {
		return nil, ErrInsightsRunning
	}

	report, err := s.run(ctx)
	if err != nil {
		_ = s.jobs.Complete(false, err.Error())
		s.log(userID, "Insight generation failed", err)
		return nil, err
	}

	_ = s.jobs.Complete(true, "")
	s.log(userID, fmt.Sprintf("Generated insights for %d donations", report.TotalDonations), nil)
	return report, nil
}

func (s *InsightsService) run(ctx context.Context) (*entities.DonationMetrics, error) {
	gifts, err := s.gifts.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load gifts: %w", err)
	}

	records := RecordsFromGifts(gifts)
	if err := s.jobs.Start(len(records)); err != nil {
		return nil, fmt.Errorf("failed to start job: %w", err)
	}
	_ = s.jobs.Update(0, "generating")

	report, err := s.generator.GenerateMetrics(ctx, records)
	if err != nil {
		return nil, err
	}

	_ = s.jobs.Update(len(records), "saving")
	if err := s.reports.SetInsightsReport(report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	log.Printf("Insights: regenerated report over %d donations", len(records))
	return report, nil
}

func (s *InsightsService) log(userID uint, description string, err error) {
	if s.audit != nil {
		s.audit.LogInsights(userID, description, err)
	}
}

// Latest returns the stored report, or nil.
func (s *InsightsService) Latest() (*entities.DonationMetrics, error) {
	return s.reports.GetInsightsReport()
}

// Progress returns the state of the latest run, or nil if none ran.
func (s *InsightsService) Progress() (*entities.JobProgress, error) {
	if _, err := s.jobs.IsRunning(); err != nil {
		return nil, err
	}
	progress, err := s.jobs.Get()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return progress, err
}

// RecordsFromGifts turns stored gifts back into donation records. Undated
// gifts are skipped since every report figure is dated.
func RecordsFromGifts(gifts []entities.Gift) []entities.DonationRecord {
	records := make([]entities.DonationRecord, 0, len(gifts))
	for _, g := range gifts {
		if g.GiftDate == nil {
			continue
		}
		records = append(records, entities.DonationRecord{
			Amount:   g.Amount,
			Date:     *g.GiftDate,
			Campaign: g.Campaign,
			DonorID:  g.DonorID,
			Metadata: g.Metadata,
		})
	}
	return records
}
