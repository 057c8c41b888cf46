package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/doeshing/budgetq/internal/domain"
)

// Inspect reads the claims of token without verifying its signature; the
// signing key belongs to the service. Tokens that are not JWTs are reported
// as opaque.
func Inspect(token string) domain.TokenInfo {
	if token == "" {
		return domain.TokenInfo{}
	}
	info := domain.TokenInfo{Present: true}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		info.Opaque = true
		return info
	}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info
}
