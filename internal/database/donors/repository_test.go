package donors

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/givin-app/givin/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "donors.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Donor{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := setupTestDB(t)

	donor := &entities.Donor{FirstName: "Ada", LastName: "Lovelace", Email: " ADA@Example.com "}
	require.NoError(t, repo.Create(donor))
	assert.NotEmpty(t, donor.ID)

	got, err := repo.GetByID(donor.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "Ada Lovelace", got.DisplayName())

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, ErrDonorNotFound)
}

func TestRepository_List(t *testing.T) {
	repo := setupTestDB(t)
	for _, d := range []entities.Donor{
		{FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil"},
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"},
	} {
		d := d
		require.NoError(t, repo.Create(&d))
	}

	t.Run("ordered by last name", func(t *testing.T) {
		list, total, err := repo.List(Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 3)
		assert.Equal(t, "Hopper", list[0].LastName)
		assert.Equal(t, "Turing", list[2].LastName)
	})

	t.Run("search", func(t *testing.T) {
		list, total, err := repo.List(Filter{Query: "EXAMPLE"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)
	})

	t.Run("pagination", func(t *testing.T) {
		list, total, err := repo.List(Filter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 1)
		assert.Equal(t, "Lovelace", list[0].LastName)
	})
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	repo := setupTestDB(t)
	donor := &entities.Donor{FirstName: "Ada", LastName: "Lovelace"}
	require.NoError(t, repo.Create(donor))

	donor.City = "London"
	donor.Notes = ""
	require.NoError(t, repo.Update(donor))

	got, err := repo.GetByID(donor.ID)
	require.NoError(t, err)
	assert.Equal(t, "London", got.City)
	assert.False(t, got.CreatedAt.IsZero())

	assert.ErrorIs(t, repo.Update(&entities.Donor{ID: "missing", FirstName: "x"}), ErrDonorNotFound)

	require.NoError(t, repo.Delete(donor.ID))
	_, err = repo.GetByID(donor.ID)
	assert.ErrorIs(t, err, ErrDonorNotFound)
	assert.ErrorIs(t, repo.Delete(donor.ID), ErrDonorNotFound)
}

func TestRepository_UpsertRecords(t *testing.T) {
	repo := setupTestDB(t)
	existing := &entities.Donor{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", City: "London"}
	require.NoError(t, repo.Create(existing))

	created, updated, err := repo.UpsertRecords([]entities.DonorRecord{
		{FirstName: "Ada", LastName: "King", Email: "ADA@example.com", Phone: "555-0100",
			Metadata: entities.Metadata{{Key: "donationAmount", Value: "50"}}},
		{FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil"},
		{FirstName: "No", LastName: "Email"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 1, updated)

	got, err := repo.GetByID(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "King", got.LastName)
	assert.Equal(t, "London", got.City, "empty import fields keep stored values")
	assert.Equal(t, "555-0100", got.Phone)
	v, ok := got.Metadata.Get("donationAmount")
	assert.True(t, ok)
	assert.Equal(t, "50", v)

	all, err := repo.All()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
