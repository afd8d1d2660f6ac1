package audit

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/givin-app/givin/internal/database/audit"
	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/importers"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))

	return NewService(auditRepo.NewRepository(db)), db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventImport,
		Action:    "test_import",
		Status:    entities.AuditStatusSuccess,
	}
	require.NoError(t, svc.Log(event))

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved, event.ID).Error)
	assert.Equal(t, "test_import", saved.Action)
}

func TestService_LogImport(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("clean import", func(t *testing.T) {
		svc.LogImport(1, &importers.ImportResult{Kind: importers.KindDonors, TotalRows: 4, SuccessCount: 4}, "a.json")
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ?", "donors_import").First(&event).Error)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "Imported 4 of 4 donors rows", event.Description)
		assert.Contains(t, event.Metadata, `"audit_file":"a.json"`)
	})

	t.Run("import with row errors", func(t *testing.T) {
		svc.LogImport(1, &importers.ImportResult{
			Kind:           importers.KindDonations,
			TotalRows:      3,
			SuccessCount:   2,
			ErrorCount:     1,
			AdditionalInfo: "insights unavailable",
		}, "")
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ?", "donations_import").First(&event).Error)
		assert.Equal(t, entities.AuditStatusPartial, event.Status)
		assert.Equal(t, "insights unavailable", event.ErrorMsg)
	})
}

func TestService_LogDelete(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogDelete(1, "donor", "d-42", "Ada Lovelace")
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "donor_delete").First(&event).Error)
	assert.Equal(t, entities.AuditEventDelete, event.EventType)
	assert.Equal(t, "d-42", event.EntityID)
	assert.Equal(t, "Deleted donor: Ada Lovelace", event.Description)
}

func TestService_LogExport(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogExport(2, "library_file", "f-1", "Downloaded highlighted_gifts.csv")
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "library_file_export").First(&event).Error)
	assert.Equal(t, entities.AuditEventExport, event.EventType)
	assert.Equal(t, uint(2), event.UserID)
	assert.Equal(t, "f-1", event.EntityID)
}

func TestService_LogInsights(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogInsights(0, "Generated insights for 12 gifts", nil)
	svc.LogInsights(0, "Insight generation failed", errors.New("quota exceeded"))
	svc.Wait()

	events, total, err := svc.GetEvents(auditRepo.Filter{EventType: entities.AuditEventInsights})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	var failed entities.AuditEvent
	require.NoError(t, db.Where("status = ?", entities.AuditStatusFailed).First(&failed).Error)
	assert.Equal(t, "quota exceeded", failed.ErrorMsg)
	assert.Len(t, events, 2)
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAuth(1, "login", "192.168.1.1", "Mozilla/5.0", true)
	svc.LogAuth(0, "login_failed", "10.0.0.1", "curl/8.0", false)
	svc.Wait()

	var ok, failed entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "login").First(&ok).Error)
	require.NoError(t, db.Where("action = ?", "login_failed").First(&failed).Error)
	assert.Equal(t, entities.AuditStatusSuccess, ok.Status)
	assert.Equal(t, "192.168.1.1", ok.IPAddress)
	assert.Equal(t, entities.AuditStatusFailed, failed.Status)
}

func TestService_LogSettings(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogSettings(1, "organization_update", "Updated organization profile")
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "organization_update").First(&event).Error)
	assert.Equal(t, entities.AuditEventSettings, event.EventType)
}

func TestService_GetEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Log(&entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventImport,
			Action:    "test",
			Status:    entities.AuditStatusSuccess,
		}))
	}

	events, total, err := svc.GetEvents(auditRepo.Filter{UserID: 1, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, events, 3)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)

	require.NoError(t, db.Create(&entities.AuditEvent{
		Action:    "old",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&entities.AuditEvent{
		Action:    "new",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now(),
	}).Error)

	deleted, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []entities.AuditEvent
	db.Find(&remaining)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Action)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a very long string", 10, "this is..."},
		{"", 5, ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, truncate(tc.input, tc.maxLen))
	}
}
