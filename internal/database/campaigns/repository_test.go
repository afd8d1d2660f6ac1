package campaigns

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/givin-app/givin/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "campaigns.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Campaign{}, &entities.Gift{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db), db
}

func TestRepository_ListWithTotals(t *testing.T) {
	repo, db := setupTestDB(t)

	require.NoError(t, repo.Create(&entities.Campaign{Name: "Spring", Goal: decimal.NewFromInt(1000)}))
	require.NoError(t, repo.Create(&entities.Campaign{Name: "Gala"}))
	for i, amount := range []string{"100.25", "50", "10"} {
		campaign := "Spring"
		if i == 2 {
			campaign = "Other"
		}
		require.NoError(t, db.Create(&entities.Gift{ID: string(rune('a' + i)), Campaign: campaign, Amount: decimal.RequireFromString(amount)}).Error)
	}

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Gala", list[0].Name)
	assert.True(t, list[0].Raised.IsZero())
	assert.Equal(t, 0, list[0].GiftCount)

	assert.Equal(t, "Spring", list[1].Name)
	assert.Equal(t, "150.25", list[1].Raised.String())
	assert.Equal(t, 2, list[1].GiftCount)
}

func TestRepository_CRUD(t *testing.T) {
	repo, _ := setupTestDB(t)

	c := &entities.Campaign{Name: "  Year End  ", Description: "December appeal"}
	require.NoError(t, repo.Create(c))
	assert.Equal(t, "Year End", c.Name)

	c.Description = "Updated"
	c.Goal = decimal.NewFromInt(5000)
	require.NoError(t, repo.Update(c))

	got, err := repo.GetByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Description)
	assert.Equal(t, "5000", got.Goal.String())

	require.NoError(t, repo.Delete(c.ID))
	_, err = repo.GetByID(c.ID)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
	assert.ErrorIs(t, repo.Delete(c.ID), ErrCampaignNotFound)
}

func TestRepository_NameRequired(t *testing.T) {
	repo, _ := setupTestDB(t)

	assert.ErrorIs(t, repo.Create(&entities.Campaign{Name: " "}), ErrNameRequired)
	assert.ErrorIs(t, repo.Update(&entities.Campaign{ID: 1}), ErrNameRequired)
}

func TestRepository_EnsureExist(t *testing.T) {
	repo, _ := setupTestDB(t)
	require.NoError(t, repo.Create(&entities.Campaign{Name: "Spring"}))

	created, err := repo.EnsureExist([]string{"Spring", "Gala", " Gala ", "", "Unknown"})

	require.NoError(t, err)
	assert.Equal(t, 2, created)

	list, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, list, 3)

	created, err = repo.EnsureExist([]string{"Gala"})
	require.NoError(t, err)
	assert.Zero(t, created)
}
