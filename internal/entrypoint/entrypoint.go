package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/givin-app/givin/internal/audit"
	"github.com/givin-app/givin/internal/auth"
	"github.com/givin-app/givin/internal/config"
	"github.com/givin-app/givin/internal/database"
	dbaudit "github.com/givin-app/givin/internal/database/audit"
	"github.com/givin-app/givin/internal/database/jobs"
	"github.com/givin-app/givin/internal/database/library"
	"github.com/givin-app/givin/internal/database/settings"
	"github.com/givin-app/givin/internal/database/snapshots"
	"github.com/givin-app/givin/internal/database/users"
	"github.com/givin-app/givin/internal/entities"
	http_controllers "github.com/givin-app/givin/internal/http"
	"github.com/givin-app/givin/internal/importers"
	"github.com/givin-app/givin/internal/insights"
	"github.com/givin-app/givin/internal/metrics"
	"github.com/givin-app/givin/internal/scheduler"
	"github.com/givin-app/givin/internal/services"
	"github.com/givin-app/givin/internal/settingsstore"
	"github.com/givin-app/givin/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// NewContentGenerator returns the Gemini client, or nil when no API key is
// configured. The nil is untyped so callers can test it against interfaces.
func NewContentGenerator(ctx context.Context, cfg config.Assistant) insights.ContentGenerator {
	if cfg.APIKey == "" {
		log.Printf("WARNING: GEMINI_API_KEY is not set. Insights will contain figures only and the assistant is disabled.")
		return nil
	}
	client, err := insights.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		log.Printf("WARNING: %v. Insights will contain figures only and the assistant is disabled.", err)
		return nil
	}
	log.Printf("Assistant model: %s", client.Model())
	return client
}

// NewPipeline builds the import pipeline from configuration. llm may be nil.
// An unknown IMPORT_DATE_POLICY is an error.
func NewPipeline(db *database.Database, llm insights.ContentGenerator, cfg *config.Config) (*importers.Pipeline, error) {
	policy, err := importers.ParseDatePolicy(cfg.Import.DatePolicy)
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_DATE_POLICY: %w", err)
	}
	return importers.NewPipeline(db, insights.NewGenerator(llm), importers.Options{
		DatePolicy:       policy,
		GeneratorTimeout: cfg.Assistant.Timeout,
	}), nil
}

// MetricsOptions applies the configured trend length to the defaults.
func MetricsOptions(cfg config.Metrics) metrics.Options {
	opts := metrics.DefaultOptions()
	if cfg.Months > 0 {
		opts.Months = cfg.Months
	}
	return opts
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Givin v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	settingsStore := settingsstore.New(settings.NewRepository(db.DB))
	auditService := audit.NewService(dbaudit.NewRepository(db.DB))
	defer auditService.Wait()

	// Raw import results are kept as JSON files next to the audit trail
	auditor := audit.NewAuditor(cfg.Audit.Dir)

	llm := NewContentGenerator(context.Background(), cfg.Assistant)
	generator := insights.NewGenerator(llm)
	pipeline, err := NewPipeline(db, llm, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize import pipeline: %v", err)
	}

	dashboard := services.NewDashboardService(db.Gifts, db.Donors, snapshots.NewRepository(db.DB), MetricsOptions(cfg.Metrics))
	insightsService := services.NewInsightsService(db.Gifts, generator, settingsStore,
		jobs.NewRepository(db.DB, entities.JobTypeInsights), auditService)
	importService := services.NewImportService(auditor, auditService, settingsStore)

	// Task queue: dispatchers fall back to inline runs when it is disabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	taskCfg := tasks.FromConfig(cfg.Tasks)
	if taskCfg.Enabled {
		tasksPath := cfg.Tasks.DatabasePath
		if tasksPath == "" {
			tasksPath = tasks.DerivePath(cfg.Database.Path)
		}
		taskClient, err = tasks.NewClient(tasksPath, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewGenerateInsightsQueue(insightsService),
			tasks.NewSnapshotMetricsQueue(dashboard, settingsStore),
			tasks.NewCleanupAuditEventsQueue(auditService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	} else {
		log.Printf("Task queue disabled: background jobs run inline")
	}

	insightsDispatcher := tasks.NewInsightsDispatcher(taskClient, insightsService)
	snapshotScheduler := scheduler.NewMetricsSnapshotScheduler(settingsStore,
		tasks.NewSnapshotDispatcher(taskClient, dashboard, settingsStore))
	cleanupScheduler := scheduler.NewAuditCleanupScheduler(
		tasks.NewCleanupDispatcher(taskClient, auditService, cfg.Audit.RetentionDays), "")

	schedCtx, schedCancel := context.WithCancel(context.Background())
	if err := snapshotScheduler.Start(schedCtx); err != nil {
		log.Printf("WARNING: Failed to start snapshot scheduler: %v", err)
	}
	if err := cleanupScheduler.Start(schedCtx); err != nil {
		log.Printf("WARNING: Failed to start audit cleanup scheduler: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:          db,
		Library:           library.NewRepository(db.DB),
		Settings:          settingsStore,
		Audit:             auditService,
		ImportSessions:    importers.NewSessionStore(time.Hour),
		ImportPipeline:    pipeline,
		ImportRecorder:    importService,
		MaxUploadBytes:    cfg.Import.MaxUploadBytes,
		Dashboard:         dashboard,
		SnapshotScheduler: snapshotScheduler,
		Insights:          insightsService,
		InsightsRunner:    insightsDispatcher,
		TaskClient:        taskClient,
		AuthConfig:        cfg.Auth,
		Version:           version,
	}
	if llm != nil {
		routerCfg.Assistant = insights.NewAssistant(llm)
	}

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")
		if err := setupAuth(db, cfg.Auth, &routerCfg); err != nil {
			log.Fatalf("Failed to initialize authentication: %v", err)
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		cleanupScheduler.Stop()
		snapshotScheduler.Stop()
		schedCancel()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// setupAuth fills the auth fields of routerCfg for local mode.
func setupAuth(db *database.Database, cfg config.Auth, routerCfg *http_controllers.RouterConfig) error {
	authService := auth.NewService(users.NewRepository(db.DB), cfg)

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}

	csrfSecret, err := auth.SessionSecret(cfg.SessionSecret)
	if err != nil {
		return err
	}

	if hasUsers, _ := authService.HasUsers(); !hasUsers {
		log.Printf("No users found. POST /api/auth/setup to create an administrator account.")
	}

	routerCfg.AuthService = authService
	routerCfg.SessionManager = sessionManager
	routerCfg.AuthMiddleware = auth.NewMiddleware(authService, sessionManager, cfg)
	routerCfg.CSRFSecret = csrfSecret
	return nil
}
