package auth

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/givin-app/givin/internal/config"
	"github.com/givin-app/givin/internal/database/users"
	"github.com/givin-app/givin/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrAuthRequired     = errors.New("authentication required")
	ErrInvalidRole      = errors.New("invalid role")
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
	ErrEmailNotAllowed  = errors.New("email is not on the allow-list")
)

// UserRepository defines the user data access the service needs.
type UserRepository interface {
	Create(user *entities.User) error
	GetByID(id uint) (*entities.User, error)
	GetByLogin(login string) (*entities.User, error)
	Exists(username, email string) (bool, error)
	Count() (int64, error)
	RecordLogin(id uint, at time.Time) error
	RecordFailedLogin(id uint, failedCount int, lockedUntil *time.Time) error
	UpdatePasswordHash(id uint, hash string) error
}

var _ UserRepository = (*users.Repository)(nil)

// Service handles authentication and user management.
type Service struct {
	repo   UserRepository
	config config.Auth
	now    func() time.Time
}

// NewService creates a new authentication service.
func NewService(repo UserRepository, cfg config.Auth) *Service {
	return &Service{
		repo:   repo,
		config: cfg,
		now:    time.Now,
	}
}

// EmailAllowed reports whether the email may hold an account. An empty
// allow-list admits everyone.
func (s *Service) EmailAllowed(email string) bool {
	if len(s.config.AllowedEmails) == 0 {
		return true
	}
	return slices.Contains(s.config.AllowedEmails, strings.ToLower(strings.TrimSpace(email)))
}

// CreateUser creates a new user with password authentication.
func (s *Service) CreateUser(username, email, password string, role entities.UserRole) (*entities.User, error) {
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	// RFC 5321 caps addresses at 254
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}
	if !s.EmailAllowed(email) {
		return nil, ErrEmailNotAllowed
	}

	switch role {
	case entities.UserRoleAdmin, entities.UserRoleEditor, entities.UserRoleViewer:
	default:
		return nil, ErrInvalidRole
	}

	exists, err := s.repo.Exists(username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate validates credentials and returns the user.
// Accounts are locked after MaxLoginAttempts consecutive failures.
func (s *Service) Authenticate(login, password string) (*entities.User, error) {
	user, err := s.repo.GetByLogin(login)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(user, now)
		return nil, err
	}

	if !s.EmailAllowed(user.Email) {
		return nil, ErrEmailNotAllowed
	}

	if err := s.repo.RecordLogin(user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	s.upgradeHash(user, password)
	user.LastLoginAt = &now
	user.FailedLoginCount = 0
	user.LockedUntil = nil

	return user, nil
}

func (s *Service) recordFailedLogin(user *entities.User, now time.Time) {
	user.FailedLoginCount++

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	var lockedUntil *time.Time
	if user.FailedLoginCount >= maxAttempts {
		lockoutDuration := s.config.LockoutDuration
		if lockoutDuration == 0 {
			lockoutDuration = 30 * time.Minute
		}
		until := now.Add(lockoutDuration)
		lockedUntil = &until
	}

	_ = s.repo.RecordFailedLogin(user.ID, user.FailedLoginCount, lockedUntil)
}

// upgradeHash re-hashes the password after a successful login when
// AUTH_BCRYPT_COST changed since the hash was stored.
func (s *Service) upgradeHash(user *entities.User, password string) {
	if !NeedsRehash(user.PasswordHash, s.config.BcryptCost) {
		return
	}
	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		log.Printf("Auth: could not re-hash password for user %d: %v", user.ID, err)
		return
	}
	if err := s.repo.UpdatePasswordHash(user.ID, hash); err != nil {
		log.Printf("Auth: could not store re-hashed password for user %d: %v", user.ID, err)
		return
	}
	user.PasswordHash = hash
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.repo.GetByID(id)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ChangePassword updates a user's password.
func (s *Service) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if err := CheckPassword(oldPassword, user.PasswordHash); err != nil {
		return err
	}

	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}

	return s.repo.UpdatePasswordHash(user.ID, newHash)
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.repo.Count()
	return count > 0, err
}

// GetUserCount returns the number of users in the database.
func (s *Service) GetUserCount() (int64, error) {
	return s.repo.Count()
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}

// GetAuthMode returns the current authentication mode.
func (s *Service) GetAuthMode() config.AuthMode {
	return s.config.Mode
}
