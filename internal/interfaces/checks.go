package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/givin-app/givin/internal/audit"
	"github.com/givin-app/givin/internal/auth"
	"github.com/givin-app/givin/internal/database"
	"github.com/givin-app/givin/internal/database/campaigns"
	"github.com/givin-app/givin/internal/database/donors"
	"github.com/givin-app/givin/internal/database/gifts"
	"github.com/givin-app/givin/internal/database/jobs"
	"github.com/givin-app/givin/internal/database/library"
	"github.com/givin-app/givin/internal/database/snapshots"
	"github.com/givin-app/givin/internal/http"
	"github.com/givin-app/givin/internal/importers"
	"github.com/givin-app/givin/internal/insights"
	"github.com/givin-app/givin/internal/scheduler"
	"github.com/givin-app/givin/internal/services"
	"github.com/givin-app/givin/internal/settingsstore"
	"github.com/givin-app/givin/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.DonorStore = (*donors.Repository)(nil)
var _ http.GiftStore = (*gifts.Repository)(nil)
var _ http.CampaignStore = (*campaigns.Repository)(nil)
var _ http.CampaignEnsurer = (*campaigns.Repository)(nil)
var _ http.LibraryStore = (*library.Repository)(nil)
var _ http.SettingsStore = (*settingsstore.SettingsStore)(nil)

var _ services.GiftReader = (*gifts.Repository)(nil)
var _ services.DonorReader = (*donors.Repository)(nil)
var _ services.SnapshotStore = (*snapshots.Repository)(nil)
var _ services.ReportStore = (*settingsstore.SettingsStore)(nil)
var _ services.JobTracker = (*jobs.Repository)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

var _ importers.Store = (*database.Database)(nil)
var _ importers.MetricsGenerator = (*insights.Generator)(nil)
var _ http.ImportProcessor = (*importers.Pipeline)(nil)
var _ http.ImportRecorder = (*services.ImportService)(nil)
var _ services.ImportAuditor = (*audit.Auditor)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ http.Auditor = (*audit.Service)(nil)
var _ auth.Auditor = (*audit.Service)(nil)
var _ services.ImportLogger = (*audit.Service)(nil)
var _ services.InsightsLogger = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Dashboard, Insights and Assistant
// =============================================================================

var _ http.DashboardReader = (*services.DashboardService)(nil)
var _ http.InsightsReader = (*services.InsightsService)(nil)
var _ http.InsightsRunner = (*tasks.InsightsDispatcher)(nil)
var _ http.Asker = (*insights.Assistant)(nil)
var _ insights.ContentGenerator = (*insights.GeminiClient)(nil)
var _ services.MetricsGenerator = (*insights.Generator)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.InsightsRegenerator = (*services.InsightsService)(nil)
var _ tasks.SnapshotTaker = (*services.DashboardService)(nil)
var _ tasks.SnapshotStatusRecorder = (*settingsstore.SettingsStore)(nil)
var _ http.SnapshotScheduler = (*scheduler.MetricsSnapshotScheduler)(nil)
var _ scheduler.SnapshotConfigSource = (*settingsstore.SettingsStore)(nil)
var _ scheduler.SnapshotRunner = (*tasks.SnapshotDispatcher)(nil)
var _ scheduler.AuditCleanupRunner = (*tasks.CleanupDispatcher)(nil)
