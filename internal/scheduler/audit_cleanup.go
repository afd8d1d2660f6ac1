package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// DefaultAuditCleanupSchedule runs the cleanup daily at 03:30.
const DefaultAuditCleanupSchedule = "30 3 * * *"

// AuditCleanupRunner removes expired audit events.
type AuditCleanupRunner interface {
	RunAuditCleanup(ctx context.Context) error
}

// AuditCleanupScheduler prunes the audit trail once a day.
type AuditCleanupScheduler struct {
	runner   AuditCleanupRunner
	schedule string

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewAuditCleanupScheduler(runner AuditCleanupRunner, schedule string) *AuditCleanupScheduler {
	if schedule == "" {
		schedule = DefaultAuditCleanupSchedule
	}
	return &AuditCleanupScheduler{
		runner:   runner,
		schedule: schedule,
		cron:     newCron(),
	}
}

func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.runner.RunAuditCleanup(ctx); err != nil {
			log.Printf("Audit cleanup: failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Audit cleanup scheduler: started with schedule '%s'", s.schedule)
	return nil
}

func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
}
