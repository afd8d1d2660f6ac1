package http

import (
	"github.com/gin-gonic/gin"

	"github.com/givin-app/givin/internal/auth"
	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/importers"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyRole, entities.UserRoleAdmin)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	editors := requireRole(cfg.AuthMiddleware, entities.UserRoleAdmin, entities.UserRoleEditor)
	admins := requireRole(cfg.AuthMiddleware, entities.UserRoleAdmin)

	if cfg.AuthService != nil {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		if cfg.Audit != nil {
			authController.SetAuditor(cfg.Audit)
		}
		authController.RegisterRoutes(router)
	}

	// Audit sinks stay untyped nil when no auditor is configured
	var (
		deletes  DeleteLogger
		settings SettingsLogger
		library  LibraryAuditor
	)
	if cfg.Audit != nil {
		deletes, settings, library = cfg.Audit, cfg.Audit, cfg.Audit
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	if cfg.Database != nil {
		donorsController := NewDonorsController(cfg.Database.Donors, cfg.Database.Gifts, deletes)
		api.GET("/donors", donorsController.List)
		api.GET("/donors/:id", donorsController.Get)
		api.POST("/donors", editors, donorsController.Create)
		api.PUT("/donors/:id", editors, donorsController.Update)
		api.DELETE("/donors/:id", editors, donorsController.Delete)

		giftsController := NewGiftsController(cfg.Database.Gifts, cfg.Database.Campaigns, deletes)
		api.GET("/gifts", giftsController.List)
		api.GET("/gifts/:id", giftsController.Get)
		api.POST("/gifts", editors, giftsController.Create)
		api.DELETE("/gifts/:id", editors, giftsController.Delete)

		campaignsController := NewCampaignsController(cfg.Database.Campaigns, deletes)
		api.GET("/campaigns", campaignsController.List)
		api.GET("/campaigns/:id", campaignsController.Get)
		api.POST("/campaigns", editors, campaignsController.Create)
		api.PUT("/campaigns/:id", editors, campaignsController.Update)
		api.DELETE("/campaigns/:id", editors, campaignsController.Delete)
	}

	if cfg.ImportPipeline != nil {
		sessions := cfg.ImportSessions
		if sessions == nil {
			sessions = importers.NewSessionStore(0)
		}
		importsController := NewImportsController(sessions, cfg.ImportPipeline, cfg.ImportRecorder, cfg.MaxUploadBytes)
		imports := api.Group("/imports", editors)
		imports.POST("", importsController.Create)
		imports.GET("/:id", importsController.Get)
		imports.POST("/:id/file", importsController.Upload)
		imports.POST("/:id/events", importsController.Event)
		imports.DELETE("/:id", importsController.Delete)
	}

	if cfg.Library != nil {
		libraryController := NewLibraryController(cfg.Library, library, cfg.MaxUploadBytes)
		api.GET("/library", libraryController.List)
		api.GET("/library/:id", libraryController.Get)
		api.GET("/library/:id/preferences", libraryController.GetPreference)
		api.GET("/library/:id/download", libraryController.Download)
		api.POST("/library", editors, libraryController.Upload)
		api.DELETE("/library/:id", editors, libraryController.Delete)
		api.PUT("/library/:id/preferences", editors, libraryController.SavePreference)
	}

	if cfg.Dashboard != nil {
		dashboardController := NewDashboardController(cfg.Dashboard, cfg.Settings, cfg.SnapshotScheduler, settings)
		api.GET("/dashboard", dashboardController.Get)
		api.GET("/dashboard/history", dashboardController.History)
		api.POST("/dashboard/snapshots", editors, dashboardController.TakeSnapshot)
		if cfg.Settings != nil {
			api.GET("/settings/snapshots", dashboardController.GetSettings)
			api.PUT("/settings/snapshots", admins, dashboardController.UpdateSettings)
			api.DELETE("/settings/snapshots", admins, dashboardController.ResetSettings)
		}

		assistantController := NewAssistantController(cfg.Assistant, cfg.Dashboard)
		api.POST("/assistant/chat", assistantController.Chat)
	}

	if cfg.Settings != nil {
		organizationController := NewOrganizationController(cfg.Settings, settings)
		api.GET("/organization", organizationController.Get)
		api.PUT("/organization", admins, organizationController.Update)
	}

	if cfg.Insights != nil {
		insightsController := NewInsightsController(cfg.Insights, cfg.InsightsRunner)
		api.GET("/insights", insightsController.Latest)
		api.GET("/insights/status", insightsController.Status)
		api.POST("/insights/run", editors, insightsController.Run)
	}

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		api.GET("/audit", auditController.GetAuditEvents)
		api.GET("/audit/types", auditController.GetEventTypes)
	}

	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", admins, tasksController.RunTask)
	}

	return router
}

func requireRole(m *auth.Middleware, roles ...entities.UserRole) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return m.RequireRole(roles...)
}
