package library

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/givin-app/givin/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "library.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.LibraryFile{}, &entities.LibraryPreference{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_SaveListGet(t *testing.T) {
	repo := setupTestDB(t)

	older := &entities.LibraryFile{Name: "a.csv", FileType: entities.LibraryFileCSV, Content: "x\n1", UploadedAt: time.Now().Add(-time.Hour)}
	newer := &entities.LibraryFile{Name: "b.pdf", FileType: entities.LibraryFilePDF}
	require.NoError(t, repo.Save(older))
	require.NoError(t, repo.Save(newer))
	assert.NotEmpty(t, older.ID)

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b.pdf", list[0].Name)
	assert.Empty(t, list[1].Content, "listing does not load content")

	got, err := repo.GetByID(older.ID)
	require.NoError(t, err)
	assert.Equal(t, "x\n1", got.Content)

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestRepository_Preferences(t *testing.T) {
	repo := setupTestDB(t)
	file := &entities.LibraryFile{Name: "a.csv", FileType: entities.LibraryFileCSV}
	require.NoError(t, repo.Save(file))

	pref, err := repo.GetPreference(file.ID)
	require.NoError(t, err)
	assert.Empty(t, pref.HighlightedRows)
	assert.Empty(t, pref.HighlightedColumns)

	_, err = repo.SavePreference(file.ID, 0, []int{0, 2}, []string{"Name"})
	require.NoError(t, err)
	_, err = repo.SavePreference(file.ID, 1, []int{1}, []string{"Name", "Total"})
	require.NoError(t, err)

	pref, err = repo.GetPreference(file.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pref.Dataset)
	assert.Equal(t, []int{1}, pref.HighlightedRows)
	assert.Equal(t, []string{"Name", "Total"}, pref.HighlightedColumns)

	_, err = repo.SavePreference("missing", 0, nil, nil)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo := setupTestDB(t)
	file := &entities.LibraryFile{Name: "a.csv", FileType: entities.LibraryFileCSV}
	require.NoError(t, repo.Save(file))
	_, err := repo.SavePreference(file.ID, 0, []int{0}, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(file.ID))

	_, err = repo.GetByID(file.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
	pref, err := repo.GetPreference(file.ID)
	require.NoError(t, err)
	assert.Zero(t, pref.ID)

	assert.ErrorIs(t, repo.Delete(file.ID), ErrFileNotFound)
}
