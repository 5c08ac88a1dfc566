// Package auth — password hashing.
//
// bcrypt is deliberately slow, generates a random salt per hash, and embeds
// the salt and cost in the output string, so a single TEXT column stores
// everything needed to verify later. Comparison is constant-time.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordService hashes and verifies passwords.
//
// The cost is injectable so tests can use bcrypt.MinCost — production cost
// hashing takes ~250ms per call, which would dominate any test suite that
// registers users.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService. A cost of 0 selects
// bcrypt's default cost; out-of-range values are clamped by bcrypt itself.
func NewPasswordService(cost int) *PasswordService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordService{cost: cost}
}

// Hash hashes a plaintext password.
// bcrypt silently truncates inputs over 72 bytes; we reject them instead.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", errors.New("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. Returns nil on
// match, a non-nil error otherwise. The comparison is constant-time, so
// response timing leaks nothing about how close a guess was.
func (p *PasswordService) Verify(hash, plaintext string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return errors.New("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
