package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength applies to staff accounts created through setup or the user API.
	MinPasswordLength = 12
	// maxPasswordBytes is where bcrypt stops reading input.
	maxPasswordBytes = 72
)

var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password exceeds maximum length of %d bytes", maxPasswordBytes)
)

// hashCost returns AUTH_BCRYPT_COST, or bcrypt's default when the value is
// outside the range bcrypt accepts.
func hashCost(configured int) int {
	if configured < bcrypt.MinCost || configured > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return configured
}

// HashPassword hashes a staff password with the configured bcrypt cost.
func HashPassword(password string, cost int) (string, error) {
	switch {
	case len(password) < MinPasswordLength:
		return "", ErrPasswordTooShort
	case len(password) > maxPasswordBytes:
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost(cost))
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a password with its stored hash.
func CheckPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidPassword
	}
	return err
}

// NeedsRehash reports whether hash was made with a different cost than the
// one configured now. Unreadable hashes are left alone.
func NeedsRehash(hash string, cost int) bool {
	current, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return current != hashCost(cost)
}

// SessionSecret turns AUTH_SESSION_SECRET into key bytes for sessions and
// CSRF. Hex values are decoded, anything else is used as is. An empty value
// yields a random 32-byte key that lasts until the process exits.
func SessionSecret(configured string) ([]byte, error) {
	if configured != "" {
		if key, err := hex.DecodeString(configured); err == nil {
			return key, nil
		}
		return []byte(configured), nil
	}

	secret, err := GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(secret)
}

// GenerateSessionSecret creates a random 32-byte secret, hex encoded.
func GenerateSessionSecret() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
