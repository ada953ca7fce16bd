package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents session token claims
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
