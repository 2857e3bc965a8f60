package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens issued by the identity provider.
type JWTClaims struct {
	UserID   int64      `json:"user_id"`
	Roles    []UserRole `json:"roles"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token grants the capability.
func (c *JWTClaims) HasRole(role UserRole) bool {
	if c == nil {
		return false
	}
	return containsRole(c.Roles, role)
}
