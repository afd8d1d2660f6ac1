package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/givin-app/givin/internal/entities"
)

// SnapshotTaker stores the current dashboard figures.
type SnapshotTaker interface {
	TakeSnapshot() (*entities.MetricsSnapshot, error)
}

// SnapshotStatusRecorder keeps the outcome of the last snapshot run.
type SnapshotStatusRecorder interface {
	SetMetricsSnapshotStatus(status, message string) error
}

// SnapshotMetricsTask stores one dashboard snapshot.
type SnapshotMetricsTask struct {
	// Trigger is "schedule" or "manual"
	Trigger string `json:"trigger,omitempty"`
}

// Config returns the queue configuration for snapshot tasks.
func (t SnapshotMetricsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "snapshot_metrics",
		MaxAttempts: 3,
		Backoff:     2 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SnapshotMetricsProcessor creates a processor function for SnapshotMetricsTask.
// status may be nil.
func SnapshotMetricsProcessor(taker SnapshotTaker, status SnapshotStatusRecorder) backlite.QueueProcessor[SnapshotMetricsTask] {
	return func(ctx context.Context, task SnapshotMetricsTask) error {
		if taker == nil {
			return fmt.Errorf("dashboard service not configured")
		}

		row, err := taker.TakeSnapshot()
		if err != nil {
			recordSnapshotStatus(status, "failed", err.Error())
			return fmt.Errorf("snapshot metrics: %w", err)
		}

		msg := fmt.Sprintf("Snapshot #%d stored (%s)", row.ID, triggerName(task.Trigger))
		recordSnapshotStatus(status, "success", msg)
		log.Printf("[TASK] %s", msg)
		return nil
	}
}

func recordSnapshotStatus(status SnapshotStatusRecorder, result, msg string) {
	if status == nil {
		return
	}
	if err := status.SetMetricsSnapshotStatus(result, msg); err != nil {
		log.Printf("[TASK ERROR] Failed to record snapshot status: %v", err)
	}
}

func triggerName(trigger string) string {
	if trigger == "" {
		return "manual"
	}
	return trigger
}

// NewSnapshotMetricsQueue creates a backlite queue for snapshot tasks.
func NewSnapshotMetricsQueue(taker SnapshotTaker, status SnapshotStatusRecorder) backlite.Queue {
	return backlite.NewQueue(SnapshotMetricsProcessor(taker, status))
}

// SnapshotDispatcher runs snapshots through the queue when it is enabled and
// inline otherwise.
type SnapshotDispatcher struct {
	client    *Client
	processor backlite.QueueProcessor[SnapshotMetricsTask]
}

// NewSnapshotDispatcher creates a dispatcher. client may be nil.
func NewSnapshotDispatcher(client *Client, taker SnapshotTaker, status SnapshotStatusRecorder) *SnapshotDispatcher {
	return &SnapshotDispatcher{
		client:    client,
		processor: SnapshotMetricsProcessor(taker, status),
	}
}

// RunSnapshot enqueues or runs one snapshot.
func (d *SnapshotDispatcher) RunSnapshot(ctx context.Context, trigger string) error {
	task := SnapshotMetricsTask{Trigger: trigger}
	if d.client != nil && d.client.Enabled() {
		_, err := d.client.Add(task).Save()
		return err
	}
	return d.processor(ctx, task)
}
