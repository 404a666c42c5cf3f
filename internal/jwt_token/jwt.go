// Package jwttoken issues and validates the bearer tokens returned by login.
// The token carries only the normalized username; everything else is looked
// up live so a token never goes stale against the friend graph.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	pkgerrors "huddle/pkg/errors"
)

// Claims are the access-token claims.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	ttl        time.Duration
}

func NewService(signingKey string, ttl time.Duration) *Service {
	return &Service{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue signs a token for username.
func (s *Service) Issue(username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// Validate parses a token and returns the username it was issued for.
// Satisfies middleware.TokenValidator.
func (s *Service) Validate(tokenString string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", pkgerrors.Unauthorized("token has expired")
		}
		return "", pkgerrors.Unauthorized("invalid token")
	}
	if !parsed.Valid || claims.Username == "" {
		return "", pkgerrors.Unauthorized("invalid token")
	}
	return claims.Username, nil
}
