package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired form token")
	ErrMissingToken = errors.New("form token required")
)

// formPurpose is the only purpose form tokens are issued for.
const formPurpose = "ledger-form"

// FormTokenManager issues and validates the signed tokens embedded in every
// rendered form. A POST without a valid token did not come from a page this
// server rendered.
type FormTokenManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// FormClaims represents the claims of a form token.
type FormClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// NewFormTokenManager creates a manager with the given secret and token duration.
// secretKey should be a strong random string (e.g., 32 bytes).
func NewFormTokenManager(secretKey string, tokenDuration time.Duration) *FormTokenManager {
	return &FormTokenManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Issue creates a new form token.
func (m *FormTokenManager) Issue() (string, error) {
	now := time.Now()
	claims := &FormClaims{
		Purpose: formPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign form token: %w", err)
	}
	return tokenString, nil
}

// Validate parses and validates a form token.
func (m *FormTokenManager) Validate(tokenString string) error {
	if tokenString == "" {
		return ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&FormClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*FormClaims)
	if !ok || !token.Valid || claims.Purpose != formPurpose {
		return ErrInvalidToken
	}
	return nil
}
