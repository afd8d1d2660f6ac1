package users

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

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := filepath.Join(t.TempDir(), "users.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}

	return repo, cleanup
}

func createUser(t *testing.T, repo *Repository) *entities.User {
	t.Helper()
	user := &entities.User{
		Username:     "jane",
		Email:        " Jane@Example.org ",
		PasswordHash: "hash",
		Role:         entities.UserRoleEditor,
	}
	require.NoError(t, repo.Create(user))
	return user
}

func TestRepository_Create(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, repo)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "jane@example.org", user.Email)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_GetByLogin(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := createUser(t, repo)

	for _, login := range []string{"jane", "jane@example.org", "JANE@example.org"} {
		user, err := repo.GetByLogin(login)
		require.NoError(t, err, login)
		assert.Equal(t, created.ID, user.ID)
	}

	_, err := repo.GetByLogin("nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetByID(999)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_Exists(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	createUser(t, repo)

	exists, err := repo.Exists("other", "JANE@example.org")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists("other", "other@example.org")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_LoginBookkeeping(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, repo)
	lock := time.Now().Add(time.Hour)

	require.NoError(t, repo.RecordFailedLogin(user.ID, 5, &lock))

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.FailedLoginCount)
	require.NotNil(t, got.LockedUntil)

	require.NoError(t, repo.RecordLogin(user.ID, time.Now()))

	got, err = repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Zero(t, got.FailedLoginCount)
	assert.Nil(t, got.LockedUntil)
	assert.NotNil(t, got.LastLoginAt)
}

func TestRepository_UpdatePasswordHash(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := createUser(t, repo)

	require.NoError(t, repo.UpdatePasswordHash(user.ID, "new-hash"))
	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePasswordHash(999, "x"), ErrUserNotFound)
}
