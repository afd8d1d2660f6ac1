package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/givin-app/givin/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	client *tasks.Client
}

func NewTasksController(client *tasks.Client) *TasksController {
	return &TasksController{client: client}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

var taskTypes = []TaskTypeInfo{
	{Type: "generate_insights", Description: "Generate fundraising insights from the current dashboard", Queue: "generate_insights"},
	{Type: "snapshot_metrics", Description: "Store a snapshot of the dashboard figures", Queue: "snapshot_metrics"},
	{Type: "cleanup_audit_events", Description: "Remove audit events past the retention period", Queue: "cleanup_audit_events"},
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"task_types": taskTypes})
}

func (tc *TasksController) available(c *gin.Context) bool {
	if tc.client == nil || !tc.client.Enabled() {
		respondError(c, http.StatusServiceUnavailable, "task queue is disabled")
		return false
	}
	return true
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	if !tc.available(c) {
		return
	}
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "get task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTaskRequest is the optional request body for POST /api/tasks/:type/run.
type RunTaskRequest struct {
	RetentionDays int `json:"retention_days,omitempty"`
}

// RunTask handles POST /api/tasks/:type/run and enqueues one task of the
// given type.
func (tc *TasksController) RunTask(c *gin.Context) {
	if !tc.available(c) {
		return
	}
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	var task backlite.Task
	switch taskType {
	case "generate_insights":
		task = tasks.GenerateInsightsTask{UserID: GetUserID(c)}
	case "snapshot_metrics":
		task = tasks.SnapshotMetricsTask{Trigger: "manual"}
	case "cleanup_audit_events":
		if req.RetentionDays < 0 {
			respondValidation(c, "invalid_retention", "retention_days cannot be negative", gin.H{"retention_days": req.RetentionDays})
			return
		}
		task = tasks.CleanupAuditEventsTask{RetentionDays: req.RetentionDays}
	default:
		respondNotFound(c, "task type "+taskType)
		return
	}

	ids, err := tc.client.Add(task).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": ids[0],
		"type":    taskType,
		"message": "task enqueued",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
