// Package auth issues and verifies the JWTs that carry a caller's principal.
// The server does not manage passwords; it trusts the identity provider that
// signed the token.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"notemint/internal/common"
	"notemint/internal/server/models"
)

type Claims struct {
	jwt.RegisteredClaims
	Principal string `json:"principal"`
}

// GenerateToken mints an HS256 token embedding the caller's principal.
func GenerateToken(principal models.Principal, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Principal: string(principal),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// PrincipalFromToken verifies the token and extracts the principal claim.
// A verifiable token with no principal claim maps to the anonymous identity,
// which downstream access checks reject.
func PrincipalFromToken(tokenString string, secretKey []byte) (models.Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Anonymous, common.ErrTokenExpired
		}
		return models.Anonymous, common.ErrInvalidToken
	}

	if !token.Valid {
		return models.Anonymous, common.ErrInvalidToken
	}

	if claims.Principal == "" {
		return models.Anonymous, nil
	}

	return models.Principal(claims.Principal), nil
}
