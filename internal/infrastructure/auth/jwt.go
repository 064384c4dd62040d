package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session token claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// TokenManager issues and verifies session tokens.
type TokenManager struct {
	secret   []byte
	validity time.Duration
}

// NewTokenManager creates a token manager.
func NewTokenManager(secret string, validity time.Duration) *TokenManager {
	if validity <= 0 {
		validity = 24 * time.Hour
	}
	return &TokenManager{
		secret:   []byte(secret),
		validity: validity,
	}
}

// Generate issues a signed session token for the account.
func (m *TokenManager) Generate(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.validity)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses a session token and returns the account id it was
// issued for.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("invalid token")
	}

	return claims.UserID, nil
}
