// Package roomtoken realizes the external call-credential collaborator:
// given an identity and a room, it returns a signed short-lived credential.
// Production deployments swap Issuer for their media provider's SDK.
package roomtoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer mints a short-lived credential admitting username to room.
type Issuer interface {
	Issue(username, room string) (string, error)
}

// JWTIssuer is the development implementation, signing HS256 claims the
// media gateway can verify with the shared key.
type JWTIssuer struct {
	signingKey []byte
	ttl        time.Duration
}

func NewJWTIssuer(signingKey string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &JWTIssuer{signingKey: []byte(signingKey), ttl: ttl}
}

type roomClaims struct {
	Room string `json:"room"`
	jwt.RegisteredClaims
}

func (i *JWTIssuer) Issue(username, room string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, roomClaims{
		Room: room,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return token.SignedString(i.signingKey)
}
