package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	cost      = 12
	minLength = 8
)

var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", minLength)

// Hash derives a bcrypt hash from a plaintext password. The length check
// lives here so every caller gets the same floor.
func Hash(password string) (string, error) {
	if len(password) < minLength {
		return "", ErrPasswordTooShort
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashed), nil
}

// Compare reports whether password matches hashedPassword. It returns nil on
// match and a non-nil error otherwise.
func Compare(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return err
		}
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}
