package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/givin-app/givin/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	return db
}

func seedEvents(t *testing.T, repo *Repository) {
	t.Helper()
	for i := 0; i < 15; i++ {
		err := repo.LogEvent(&entities.AuditEvent{
			UserID:      1,
			EventType:   entities.AuditEventImport,
			Action:      "donations_import",
			Description: "Imported donations",
			Status:      entities.AuditStatusSuccess,
			CreatedAt:   time.Now().Add(time.Duration(-i) * time.Hour),
		})
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		err := repo.LogEvent(&entities.AuditEvent{
			UserID:     2,
			EventType:  entities.AuditEventDelete,
			Action:     "donor_delete",
			EntityType: "donor",
			EntityID:   "donor-1",
			Status:     entities.AuditStatusSuccess,
		})
		require.NoError(t, err)
	}
}

func TestRepository_LogEvent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	event := &entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventImport,
		Action:      "donations_import",
		Description: "Imported 10 donations",
		Status:      entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_List(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	seedEvents(t, repo)

	t.Run("all events", func(t *testing.T) {
		events, total, err := repo.List(Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Len(t, events, 20)
	})

	t.Run("by user", func(t *testing.T) {
		events, total, err := repo.List(Filter{UserID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 15)
	})

	t.Run("pagination", func(t *testing.T) {
		events, total, err := repo.List(Filter{UserID: 1, Limit: 5, Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 5)
	})

	t.Run("most recent first", func(t *testing.T) {
		events, _, err := repo.List(Filter{UserID: 1})
		require.NoError(t, err)
		for i := 1; i < len(events); i++ {
			assert.False(t, events[i].CreatedAt.After(events[i-1].CreatedAt))
		}
	})

	t.Run("by type", func(t *testing.T) {
		events, total, err := repo.List(Filter{EventType: entities.AuditEventDelete})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		for _, e := range events {
			assert.Equal(t, entities.AuditEventDelete, e.EventType)
		}
	})

	t.Run("by entity", func(t *testing.T) {
		_, total, err := repo.List(Filter{EntityType: "donor", EntityID: "donor-1"})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
	})

	t.Run("since", func(t *testing.T) {
		_, total, err := repo.List(Filter{UserID: 1, Since: time.Now().Add(-150 * time.Minute)})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	seedEvents(t, repo)

	deleted, err := repo.DeleteOldEvents(time.Now().Add(-10*time.Hour + time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)

	_, total, err := repo.List(Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
}

func TestRepository_GetEventByID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	event := &entities.AuditEvent{
		EventType: entities.AuditEventSettings,
		Action:    "organization_update",
		Status:    entities.AuditStatusSuccess,
	}
	require.NoError(t, repo.LogEvent(event))

	got, err := repo.GetEventByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, "organization_update", got.Action)

	_, err = repo.GetEventByID(999)
	assert.Error(t, err)
}
