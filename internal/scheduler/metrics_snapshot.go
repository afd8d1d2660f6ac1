package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/givin-app/givin/internal/settingsstore"
)

// SnapshotConfigSource provides the effective snapshot settings.
type SnapshotConfigSource interface {
	GetMetricsSnapshotConfig() settingsstore.MetricsSnapshotConfig
}

// SnapshotRunner takes one dashboard snapshot.
type SnapshotRunner interface {
	RunSnapshot(ctx context.Context, trigger string) error
}

// MetricsSnapshotScheduler stores dashboard snapshots on a cron schedule.
type MetricsSnapshotScheduler struct {
	settings SnapshotConfigSource
	runner   SnapshotRunner

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isTaking   bool
	runCtx     context.Context
	cancelFunc context.CancelFunc
}

func newCron() *cron.Cron {
	return cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
}

// NewMetricsSnapshotScheduler creates a new scheduler instance
func NewMetricsSnapshotScheduler(settings SnapshotConfigSource, runner SnapshotRunner) *MetricsSnapshotScheduler {
	return &MetricsSnapshotScheduler{
		settings: settings,
		runner:   runner,
		cron:     newCron(),
	}
}

// Start begins the scheduler if snapshots are enabled
func (s *MetricsSnapshotScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	config := s.settings.GetMetricsSnapshotConfig()
	if !config.Enabled {
		log.Printf("Metrics snapshot scheduler: disabled")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(config.Schedule, func() {
		s.take("schedule")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot job: %w", err)
	}
	s.entryID = entryID

	s.runCtx, s.cancelFunc = context.WithCancel(ctx)
	runCtx := s.runCtx

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(config.Schedule, time.Now())
	log.Printf("Metrics snapshot scheduler: started with schedule '%s' (%s). Next run: %v",
		config.Schedule,
		settingsstore.GetCronDescription(config.Schedule),
		nextRun)

	go func() {
		<-runCtx.Done()
		s.stop(runCtx)
	}()

	return nil
}

// Stop waits for a running job and stops the scheduler
func (s *MetricsSnapshotScheduler) Stop() {
	s.stop(nil)
}

// stop ends the run started with runCtx, or the current run when nil. The
// lock is released before waiting since a running job takes it too.
func (s *MetricsSnapshotScheduler) stop(runCtx context.Context) {
	s.mu.Lock()
	if !s.isRunning || (runCtx != nil && runCtx != s.runCtx) {
		s.mu.Unlock()
		return
	}

	done := s.cron.Stop()
	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.runCtx = nil
	s.isRunning = false
	s.mu.Unlock()

	<-done.Done()
	log.Printf("Metrics snapshot scheduler: stopped")
}

// Reschedule applies changed settings
func (s *MetricsSnapshotScheduler) Reschedule(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// RunNow takes a snapshot immediately, whether or not the schedule is enabled
func (s *MetricsSnapshotScheduler) RunNow() error {
	if s.IsTaking() {
		return fmt.Errorf("snapshot already in progress")
	}
	go s.take("manual")
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *MetricsSnapshotScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsTaking returns whether a snapshot is being taken
func (s *MetricsSnapshotScheduler) IsTaking() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isTaking
}

// GetNextRunTime returns when the next snapshot will occur
func (s *MetricsSnapshotScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *MetricsSnapshotScheduler) take(trigger string) {
	s.mu.Lock()
	if s.isTaking {
		s.mu.Unlock()
		log.Printf("Metrics snapshot: skipped (already running)")
		return
	}
	s.isTaking = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isTaking = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.runner.RunSnapshot(ctx, trigger); err != nil {
		log.Printf("Metrics snapshot: %s run failed: %v", trigger, err)
	}
}
