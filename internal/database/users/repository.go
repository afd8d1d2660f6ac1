// Package users provides database operations for staff accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByLogin("jane@example.org")
package users

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/givin-app/givin/internal/entities"
)

var ErrUserNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new user. Email is lowercased.
func (r *Repository) Create(user *entities.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.db.Create(user).Error
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	return found(&user, err)
}

// GetByLogin retrieves a user by username or email.
func (r *Repository) GetByLogin(login string) (*entities.User, error) {
	login = strings.TrimSpace(login)
	var user entities.User
	err := r.db.Where("username = ? OR email = ?", login, strings.ToLower(login)).First(&user).Error
	return found(&user, err)
}

// Exists reports whether a user with the username or email is already registered.
func (r *Repository) Exists(username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).
		Where("username = ? OR email = ?", username, strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

// Count returns the number of users.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

// List returns all users by username.
func (r *Repository) List() ([]entities.User, error) {
	var list []entities.User
	err := r.db.Order("username ASC").Find(&list).Error
	return list, err
}

// RecordLogin stamps a successful login and clears the lockout state.
func (r *Repository) RecordLogin(id uint, at time.Time) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]any{
		"last_login_at":      at,
		"failed_login_count": 0,
		"locked_until":       nil,
	}).Error
}

// RecordFailedLogin stores the failed attempt count and an optional lock.
func (r *Repository) RecordFailedLogin(id uint, failedCount int, lockedUntil *time.Time) error {
	updates := map[string]any{"failed_login_count": failedCount}
	if lockedUntil != nil {
		updates["locked_until"] = *lockedUntil
	}
	return r.db.Model(&entities.User{}).Where("id = ?", id).Updates(updates).Error
}

// UpdatePasswordHash replaces the stored password hash.
func (r *Repository) UpdatePasswordHash(id uint, hash string) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func found(user *entities.User, err error) (*entities.User, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
