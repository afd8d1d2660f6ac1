// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - DonorStore, GiftStore, CampaignStore: donor records (internal/http)
//   - LibraryStore: uploaded files and highlights (internal/http/library.go)
//   - SettingsStore: organization profile and snapshot schedule (internal/http/config.go)
//   - GiftReader, DonorReader, SnapshotStore, ReportStore: service inputs (internal/services/interfaces.go)
//
// ## Import Interfaces
//
//   - importers.Store: persists validated donation and donor records
//   - importers.MetricsGenerator: insight report for an imported batch
//   - ImportProcessor, ImportRecorder: the HTTP side of an import session
//
// ## External Service Interfaces
//
//   - insights.ContentGenerator: language model used for narratives and chat
//
// ## Background Work Interfaces
//
//   - InsightsRegenerator, SnapshotTaker, AuditEventCleaner: task processors (internal/tasks)
//   - SnapshotRunner, AuditCleanupRunner: what the cron schedulers trigger (internal/scheduler)
//
// # Adding a New Import Kind
//
//  1. Add the Kind and its target fields in internal/importers and internal/mapping
//
//     const KindPledges Kind = "pledges"
//
//     var PledgeFields = []mapping.TargetField{
//         {ID: "amount", Label: "Amount", Required: true},
//     }
//
//  2. Convert rows in the pipeline and add a Store method for the new records
//
//  3. Add a compile-time check here:
//
//     var _ importers.Store = (*database.Database)(nil)
//
// # Adding a New Language Model
//
//  1. Implement ContentGenerator in internal/insights/
//
//     func (c *OtherClient) Generate(ctx context.Context, system, prompt string, jsonOutput bool) (string, error)
//     func (c *OtherClient) Model() string
//
//     var _ ContentGenerator = (*OtherClient)(nil)
//
//  2. Select it in entrypoint.NewContentGenerator
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
