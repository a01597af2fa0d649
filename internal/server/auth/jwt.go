// Package auth issues and validates the API keys clients present to the
// row service. An API key is an HS256 JWT carrying a role claim.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cal/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Roles an API key may carry.
const (
	RoleAnon    = "anon"
	RoleService = "service"
)

// Claims holds the registered claims plus the key's role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// GenerateAPIKey signs a key for role. A zero validity produces a key
// without expiry.
func GenerateAPIKey(role string, secretKey []byte, validity time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   "cal",
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		Role: role,
	}
	if validity != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(validity))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// RoleFromAPIKey validates tokenString and returns its role.
func RoleFromAPIKey(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	switch claims.Role {
	case RoleAnon, RoleService:
		return claims.Role, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", common.ErrInvalidToken, claims.Role)
}
