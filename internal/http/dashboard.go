package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/givin-app/givin/internal/auth"
	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/metrics"
	"github.com/givin-app/givin/internal/settingsstore"
)

const defaultHistoryLimit = 30

// DashboardReader computes dashboard figures.
type DashboardReader interface {
	Current() (metrics.Snapshot, error)
	At(now time.Time) (metrics.Snapshot, error)
	History(limit int) ([]entities.MetricsSnapshot, error)
}

// SnapshotSettingsStore reads and writes the snapshot schedule settings.
type SnapshotSettingsStore interface {
	GetMetricsSnapshotConfigInfo() settingsstore.MetricsSnapshotConfigInfo
	GetMetricsSnapshotStatus() settingsstore.MetricsSnapshotStatus
	SetMetricsSnapshotEnabled(enabled bool) error
	SetMetricsSnapshotSchedule(schedule string) error
	ClearMetricsSnapshotSettings() error
}

// SnapshotScheduler controls the cron-driven snapshot job.
type SnapshotScheduler interface {
	Reschedule(ctx context.Context) error
	RunNow() error
	IsRunning() bool
	IsTaking() bool
	GetNextRunTime() *time.Time
}

// SettingsLogger records settings changes in the audit trail.
type SettingsLogger interface {
	LogSettings(userID uint, action, description string)
}

type DashboardController struct {
	dashboard DashboardReader
	settings  SnapshotSettingsStore
	scheduler SnapshotScheduler
	audit     SettingsLogger
}

func NewDashboardController(dashboard DashboardReader, settings SnapshotSettingsStore, scheduler SnapshotScheduler, audit SettingsLogger) *DashboardController {
	return &DashboardController{
		dashboard: dashboard,
		settings:  settings,
		scheduler: scheduler,
		audit:     audit,
	}
}

// Get handles GET /api/dashboard. An optional ?now=YYYY-MM-DD computes the
// figures as of the end of that day.
func (dc *DashboardController) Get(c *gin.Context) {
	at, ok := parseDateQuery(c, "now")
	if !ok {
		return
	}

	var (
		snap metrics.Snapshot
		err  error
	)
	if at != nil {
		snap, err = dc.dashboard.At(at.Add(24*time.Hour - time.Second))
	} else {
		snap, err = dc.dashboard.Current()
	}
	if err != nil {
		respondInternalError(c, err, "compute dashboard")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// History handles GET /api/dashboard/history?limit=
func (dc *DashboardController) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit < 1 {
		respondBadRequest(c, "invalid limit")
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	history, err := dc.dashboard.History(limit)
	if err != nil {
		respondInternalError(c, err, "load snapshot history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": history})
}

// TakeSnapshot handles POST /api/dashboard/snapshots and starts a snapshot in
// the background.
func (dc *DashboardController) TakeSnapshot(c *gin.Context) {
	if dc.scheduler == nil {
		respondError(c, http.StatusServiceUnavailable, "snapshot scheduler not available")
		return
	}
	if err := dc.scheduler.RunNow(); err != nil {
		respondError(c, http.StatusConflict, err.Error())
		return
	}
	respondAccepted(c, "snapshot started", nil)
}

// SchedulePreset is a predefined schedule option
type SchedulePreset struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

var snapshotPresets = []SchedulePreset{
	{Label: "Every hour", Value: "0 * * * *", Description: "Runs at the top of every hour"},
	{Label: "Daily at 06:00", Value: settingsstore.DefaultSnapshotSchedule, Description: "Runs once daily before the office opens"},
	{Label: "Daily at midnight", Value: "0 0 * * *", Description: "Runs once daily at 00:00"},
	{Label: "Weekly on Monday", Value: "0 0 * * 1", Description: "Runs every Monday at midnight"},
	{Label: "Monthly", Value: "0 0 1 * *", Description: "Runs on the 1st of every month"},
}

// SnapshotSettingsResponse is the response for GET /api/settings/snapshots
type SnapshotSettingsResponse struct {
	Config      settingsstore.MetricsSnapshotConfigInfo `json:"config"`
	Description string                                  `json:"description"`
	Status      settingsstore.MetricsSnapshotStatus     `json:"status"`
	NextRun     *time.Time                              `json:"next_run,omitempty"`
	IsRunning   bool                                    `json:"is_running"`
	IsTaking    bool                                    `json:"is_taking"`
	Presets     []SchedulePreset                        `json:"presets"`
}

func (dc *DashboardController) settingsResponse() SnapshotSettingsResponse {
	config := dc.settings.GetMetricsSnapshotConfigInfo()
	resp := SnapshotSettingsResponse{
		Config:      config,
		Description: settingsstore.GetCronDescription(config.Schedule),
		Status:      dc.settings.GetMetricsSnapshotStatus(),
		Presets:     snapshotPresets,
	}
	if dc.scheduler != nil {
		resp.NextRun = dc.scheduler.GetNextRunTime()
		resp.IsRunning = dc.scheduler.IsRunning()
		resp.IsTaking = dc.scheduler.IsTaking()
	}
	return resp
}

// GetSettings handles GET /api/settings/snapshots
func (dc *DashboardController) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, dc.settingsResponse())
}

// UpdateSnapshotSettingsRequest is the request body for PUT /api/settings/snapshots
type UpdateSnapshotSettingsRequest struct {
	Enabled  *bool  `json:"enabled"`
	Schedule string `json:"schedule"`
}

// UpdateSettings handles PUT /api/settings/snapshots
func (dc *DashboardController) UpdateSettings(c *gin.Context) {
	var req UpdateSnapshotSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	schedule := strings.TrimSpace(req.Schedule)
	if schedule != "" {
		if err := settingsstore.ValidateCronSchedule(schedule); err != nil {
			respondValidation(c, "invalid_schedule", "invalid cron schedule: "+err.Error(), gin.H{"schedule": schedule})
			return
		}
		if err := dc.settings.SetMetricsSnapshotSchedule(schedule); err != nil {
			respondInternalError(c, err, "save snapshot schedule")
			return
		}
	}
	if req.Enabled != nil {
		if err := dc.settings.SetMetricsSnapshotEnabled(*req.Enabled); err != nil {
			respondInternalError(c, err, "save snapshot enabled")
			return
		}
	}

	if !dc.reschedule(c) {
		return
	}
	if dc.audit != nil {
		config := dc.settings.GetMetricsSnapshotConfigInfo()
		dc.audit.LogSettings(auth.GetUserID(c), "snapshot_schedule",
			"enabled="+strconv.FormatBool(config.Enabled)+" schedule="+config.Schedule)
	}
	c.JSON(http.StatusOK, dc.settingsResponse())
}

// ResetSettings handles DELETE /api/settings/snapshots and reverts to
// environment or default values.
func (dc *DashboardController) ResetSettings(c *gin.Context) {
	if err := dc.settings.ClearMetricsSnapshotSettings(); err != nil {
		respondInternalError(c, err, "reset snapshot settings")
		return
	}
	if !dc.reschedule(c) {
		return
	}
	if dc.audit != nil {
		dc.audit.LogSettings(auth.GetUserID(c), "snapshot_schedule_reset", "reverted to defaults")
	}
	c.JSON(http.StatusOK, dc.settingsResponse())
}

// reschedule applies saved settings. The scheduler outlives the request, so
// it gets a context that is not cancelled when the response is written.
func (dc *DashboardController) reschedule(c *gin.Context) bool {
	if dc.scheduler == nil {
		return true
	}
	if err := dc.scheduler.Reschedule(context.WithoutCancel(c.Request.Context())); err != nil {
		respondError(c, http.StatusInternalServerError, "settings saved but failed to reschedule: "+err.Error())
		return false
	}
	return true
}
