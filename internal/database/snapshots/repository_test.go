package snapshots

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/givin-app/givin/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.MetricsSnapshot{}))
	return NewRepository(db)
}

func TestRepository_SaveAndList(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.Latest()
	assert.ErrorIs(t, err, ErrNoSnapshots)

	base := time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := repo.Save(&entities.MetricsSnapshot{
			TakenAt:           base.AddDate(0, 0, i),
			TotalDonationsMTD: decimal.NewFromInt(int64(100 * i)),
			TotalDonorPool:    i,
		})
		require.NoError(t, err)
	}

	list, err := repo.List(3)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 4, list[0].TotalDonorPool)
	assert.Equal(t, 2, list[2].TotalDonorPool)

	latest, err := repo.Latest()
	require.NoError(t, err)
	assert.Equal(t, "400", latest.TotalDonationsMTD.String())

	deleted, err := repo.DeleteOlderThan(base.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestRepository_SaveDefaultsTakenAt(t *testing.T) {
	repo := setupTestDB(t)

	s := &entities.MetricsSnapshot{}
	require.NoError(t, repo.Save(s))

	assert.False(t, s.TakenAt.IsZero())
}
