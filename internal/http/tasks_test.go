package http

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givin-app/givin/internal/tasks"
)

func tasksRouter(t *testing.T, enabled bool) *gin.Engine {
	cfg := tasks.DefaultConfig()
	cfg.Enabled = enabled
	cfg.Workers = 1

	client, err := tasks.NewClient(filepath.Join(t.TempDir(), "tasks.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	client.Register(
		backlite.NewQueue(func(context.Context, tasks.GenerateInsightsTask) error { return nil }),
		backlite.NewQueue(func(context.Context, tasks.SnapshotMetricsTask) error { return nil }),
		backlite.NewQueue(func(context.Context, tasks.CleanupAuditEventsTask) error { return nil }),
	)

	controller := NewTasksController(client)
	router := gin.New()
	router.GET("/api/tasks/types", controller.ListTaskTypes)
	router.GET("/api/tasks/:id", controller.GetTaskStatus)
	router.POST("/api/tasks/:type/run", controller.RunTask)
	return router
}

func TestTasksController_ListTaskTypes(t *testing.T) {
	router := tasksRouter(t, true)

	w := performJSON(router, http.MethodGet, "/api/tasks/types", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		TaskTypes []TaskTypeInfo `json:"task_types"`
	}](t, w)
	require.Len(t, resp.TaskTypes, 3)
	assert.Equal(t, "generate_insights", resp.TaskTypes[0].Type)
}

func TestTasksController_RunAndStatus(t *testing.T) {
	router := tasksRouter(t, true)

	w := performJSON(router, http.MethodPost, "/api/tasks/cleanup_audit_events/run", `{"retention_days":7}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	resp := decode[struct {
		TaskID string `json:"task_id"`
		Type   string `json:"type"`
	}](t, w)
	require.NotEmpty(t, resp.TaskID)
	assert.Equal(t, "cleanup_audit_events", resp.Type)

	w = performJSON(router, http.MethodGet, "/api/tasks/"+resp.TaskID, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	status := decode[struct {
		Status string `json:"status"`
	}](t, w)
	assert.Equal(t, "pending", status.Status)

	w = performJSON(router, http.MethodPost, "/api/tasks/snapshot_metrics/run", "")
	assert.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
}

func TestTasksController_Errors(t *testing.T) {
	router := tasksRouter(t, true)

	assert.Equal(t, http.StatusNotFound, performJSON(router, http.MethodPost, "/api/tasks/enrich/run", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		performJSON(router, http.MethodPost, "/api/tasks/cleanup_audit_events/run", `{"retention_days":-1}`).Code)
	assert.Equal(t, http.StatusNotFound, performJSON(router, http.MethodGet, "/api/tasks/missing", "").Code)

	disabled := tasksRouter(t, false)
	assert.Equal(t, http.StatusServiceUnavailable,
		performJSON(disabled, http.MethodPost, "/api/tasks/snapshot_metrics/run", "").Code)
}
