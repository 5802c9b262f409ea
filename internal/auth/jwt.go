// Package auth verifies the session tokens the host commerce platform issues
// for the embedded app. Tokens are HS256 and carry the shop domain; full
// platform OAuth happens outside this service.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims carried by an app session token
type SessionClaims struct {
	Shop string `json:"shop"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token for a shop
func GenerateToken(secret, shop string) (string, error) {
	claims := &SessionClaims{
		Shop: shop,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
