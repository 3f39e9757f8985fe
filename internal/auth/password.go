package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrWeakPassword    = errors.New("password must be at least 4 characters and contain a number")
)

const (
	minPasswordLength = 4
	defaultBcryptCost = 12
)

// Hasher hashes and checks passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, or the default when cost is out of range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// CheckPolicy enforces the password rules applied at registration and reset.
func CheckPolicy(password string) error {
	if len(password) < minPasswordLength || !strings.ContainsAny(password, "0123456789") {
		return ErrWeakPassword
	}
	return nil
}

// Hash creates a bcrypt hash of the password after checking the policy.
func (h *Hasher) Hash(password string) (string, error) {
	if err := CheckPolicy(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify checks if the provided password matches the hash.
func (h *Hasher) Verify(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
