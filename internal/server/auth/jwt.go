// Package auth issues and verifies the session tokens that carry a trusted
// caller account into the registry. Key management itself lives outside the
// registry; this layer only turns "holder of a valid token" into an account
// string the services can trust.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/healthdot/registry/internal/common"
)

// Claims includes the standard registered claims plus the caller account.
type Claims struct {
	jwt.RegisteredClaims
	Account string
}

// GenerateToken signs a session token (HS256) for the given account.
func GenerateToken(account string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Account: account,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// AccountFromToken verifies the token and returns the caller account.
// Expired tokens are reported as common.ErrTokenExpired, anything else
// invalid as common.ErrInvalidToken.
func AccountFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Account == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Account, nil
}
