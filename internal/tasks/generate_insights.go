package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/services"
)

// InsightsRegenerator rebuilds the insight report.
type InsightsRegenerator interface {
	Regenerate(ctx context.Context, userID uint) (*entities.DonationMetrics, error)
}

// GenerateInsightsTask regenerates the insight report over every stored gift.
type GenerateInsightsTask struct {
	// UserID is the requesting user, recorded in the audit trail (0 = system)
	UserID uint `json:"user_id,omitempty"`
}

// Config returns the queue configuration for insight generation tasks.
func (t GenerateInsightsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "generate_insights",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// GenerateInsightsProcessor creates a processor function for GenerateInsightsTask.
// A run that finds another one in progress is dropped rather than retried.
func GenerateInsightsProcessor(regenerator InsightsRegenerator) backlite.QueueProcessor[GenerateInsightsTask] {
	return func(ctx context.Context, task GenerateInsightsTask) error {
		if regenerator == nil {
			return fmt.Errorf("insights service not configured")
		}

		report, err := regenerator.Regenerate(ctx, task.UserID)
		if errors.Is(err, services.ErrInsightsRunning) {
			log.Printf("[TASK] Insight generation skipped: %v", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("generate insights: %w", err)
		}

		log.Printf("[TASK] Insights generated: %d donations, %d observations",
			report.TotalDonations, len(report.Insights))
		return nil
	}
}

// NewGenerateInsightsQueue creates a backlite queue for insight generation tasks.
func NewGenerateInsightsQueue(regenerator InsightsRegenerator) backlite.Queue {
	return backlite.NewQueue(GenerateInsightsProcessor(regenerator))
}

// InsightsDispatcher starts insight generation through the queue when it is
// enabled and in a goroutine otherwise.
type InsightsDispatcher struct {
	client    *Client
	processor backlite.QueueProcessor[GenerateInsightsTask]
	timeout   time.Duration
}

// NewInsightsDispatcher creates a dispatcher. client may be nil.
func NewInsightsDispatcher(client *Client, regenerator InsightsRegenerator) *InsightsDispatcher {
	return &InsightsDispatcher{
		client:    client,
		processor: GenerateInsightsProcessor(regenerator),
		timeout:   GenerateInsightsTask{}.Config().Timeout,
	}
}

// RunInsights schedules one regeneration and returns the task ID, empty when
// the run was started inline.
func (d *InsightsDispatcher) RunInsights(ctx context.Context, userID uint) (string, error) {
	task := GenerateInsightsTask{UserID: userID}
	if d.client != nil && d.client.Enabled() {
		ids, err := d.client.Add(task).Save()
		if err != nil {
			return "", err
		}
		if len(ids) > 0 {
			return ids[0], nil
		}
		return "", nil
	}

	go func() {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		if err := d.processor(runCtx, task); err != nil {
			log.Printf("[TASK ERROR] Inline insight generation failed: %v", err)
		}
	}()
	return "", nil
}
