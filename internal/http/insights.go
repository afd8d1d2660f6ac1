package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/givin-app/givin/internal/auth"
	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/insights"
	"github.com/givin-app/givin/internal/metrics"
)

// InsightsReader returns the stored report and the state of the last run.
type InsightsReader interface {
	Latest() (*entities.DonationMetrics, error)
	Progress() (*entities.JobProgress, error)
}

// InsightsRunner starts a regeneration in the background.
type InsightsRunner interface {
	RunInsights(ctx context.Context, userID uint) (string, error)
}

type InsightsController struct {
	reader InsightsReader
	runner InsightsRunner
}

func NewInsightsController(reader InsightsReader, runner InsightsRunner) *InsightsController {
	return &InsightsController{reader: reader, runner: runner}
}

// Latest handles GET /api/insights
func (ic *InsightsController) Latest(c *gin.Context) {
	report, err := ic.reader.Latest()
	if err != nil {
		respondInternalError(c, err, "get insights")
		return
	}
	if report == nil {
		respondNotFound(c, "insight report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// Status handles GET /api/insights/status
func (ic *InsightsController) Status(c *gin.Context) {
	progress, err := ic.reader.Progress()
	if err != nil {
		respondInternalError(c, err, "get insights progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"progress": progress,
		"running":  progress != nil && progress.Status == entities.JobStatusRunning,
	})
}

// Run handles POST /api/insights/run
func (ic *InsightsController) Run(c *gin.Context) {
	if ic.runner == nil {
		respondError(c, http.StatusServiceUnavailable, "insight generation is not configured")
		return
	}

	progress, err := ic.reader.Progress()
	if err != nil {
		respondInternalError(c, err, "get insights progress")
		return
	}
	if progress != nil && progress.Status == entities.JobStatusRunning {
		respondError(c, http.StatusConflict, "insight generation is already running")
		return
	}

	taskID, err := ic.runner.RunInsights(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "start insights")
		return
	}
	respondAccepted(c, "insight generation started", gin.H{"task_id": taskID})
}

// Asker answers questions about the dashboard.
type Asker interface {
	Enabled() bool
	Ask(ctx context.Context, question string, snapshot metrics.Snapshot, history []insights.ChatMessage) (string, error)
}

// CurrentDashboard computes the dashboard as of now.
type CurrentDashboard interface {
	Current() (metrics.Snapshot, error)
}

type AssistantController struct {
	assistant Asker
	dashboard CurrentDashboard
}

func NewAssistantController(assistant Asker, dashboard CurrentDashboard) *AssistantController {
	return &AssistantController{assistant: assistant, dashboard: dashboard}
}

type chatRequest struct {
	Question string                 `json:"question"`
	History  []insights.ChatMessage `json:"history"`
}

// Chat handles POST /api/assistant/chat
func (ac *AssistantController) Chat(c *gin.Context) {
	if ac.assistant == nil || !ac.assistant.Enabled() {
		respondError(c, http.StatusServiceUnavailable, insights.ErrAssistantDisabled.Error())
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	snapshot, err := ac.dashboard.Current()
	if err != nil {
		respondInternalError(c, err, "compute dashboard")
		return
	}

	answer, err := ac.assistant.Ask(c.Request.Context(), req.Question, snapshot, req.History)
	switch {
	case errors.Is(err, insights.ErrEmptyQuestion):
		respondValidation(c, "question_required", err.Error(), nil)
		return
	case errors.Is(err, insights.ErrAssistantDisabled):
		respondError(c, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		respondError(c, http.StatusBadGateway, "assistant failed to answer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
