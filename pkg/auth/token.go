package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenMinter mints and validates the opaque session tokens the data layer
// stores on login. HS256 only; the data layer never inspects tokens it
// stores, so this stays deliberately small.
type TokenMinter struct {
	key []byte
	ttl time.Duration
}

// NewTokenMinter creates a minter with the given signing key and token
// lifetime.
func NewTokenMinter(signingKey string, ttl time.Duration) (*TokenMinter, error) {
	if signingKey == "" {
		return nil, errors.New("signing key is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenMinter{key: []byte(signingKey), ttl: ttl}, nil
}

// Mint issues a signed token for the given email.
func (m *TokenMinter) Mint(email string, now time.Time) (string, error) {
	if email == "" {
		return "", errors.New("email is required")
	}
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns the email it was minted for.
func (m *TokenMinter) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.key, nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing session token: %w", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("session token has no subject")
	}
	return claims.Subject, nil
}
