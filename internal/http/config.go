package http

import (
	"github.com/givin-app/givin/internal/auth"
	"github.com/givin-app/givin/internal/config"
	"github.com/givin-app/givin/internal/database"
	"github.com/givin-app/givin/internal/importers"
	"github.com/givin-app/givin/internal/tasks"
)

// Auditor is everything the HTTP layer writes to or reads from the audit trail.
type Auditor interface {
	LibraryAuditor
	SettingsLogger
	AuditReader
	auth.Auditor
}

// SettingsStore covers the organization profile and the snapshot schedule.
type SettingsStore interface {
	SnapshotSettingsStore
	OrganizationStore
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Library  LibraryStore
	Settings SettingsStore
	Audit    Auditor // optional

	// Imports
	ImportSessions *importers.SessionStore
	ImportPipeline ImportProcessor
	ImportRecorder ImportRecorder
	MaxUploadBytes int64

	// Dashboard and reports
	Dashboard         DashboardReader
	SnapshotScheduler SnapshotScheduler // optional
	Insights          InsightsReader
	InsightsRunner    InsightsRunner // optional
	Assistant         Asker          // optional

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Authentication
	AuthConfig     config.Auth
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte // CSRF protection is off when empty

	// Application info
	Version string
}
