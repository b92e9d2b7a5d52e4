package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// Ensure OperatorAuthenticator implements Authenticator
var _ Authenticator = (*OperatorAuthenticator)(nil)

// OperatorAuthenticator checks a single operator account whose password is
// stored as a bcrypt hash. With an empty hash it is disabled.
type OperatorAuthenticator struct {
	username     string
	passwordHash []byte
}

// NewOperatorAuthenticator creates an authenticator for the given account.
func NewOperatorAuthenticator(username, passwordHash string) (*OperatorAuthenticator, error) {
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid operator password hash: %w", err)
		}
	}
	return &OperatorAuthenticator{
		username:     username,
		passwordHash: []byte(passwordHash),
	}, nil
}

// Enabled reports whether a password hash is configured.
func (a *OperatorAuthenticator) Enabled() bool {
	return len(a.passwordHash) > 0
}

// Authenticate compares the username and the bcrypt hash of the password.
func (a *OperatorAuthenticator) Authenticate(_ context.Context, username, password string) error {
	if !a.Enabled() {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) != 1 {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword creates a bcrypt hash suitable for OPERATOR_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
