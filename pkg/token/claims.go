package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the access token payload. The subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims

	userID uuid.UUID
}

// GetUserID implements reqctx.AuthClaims.
func (c *Claims) GetUserID() uuid.UUID { return c.userID }

// GetRole implements reqctx.AuthClaims.
func (c *Claims) GetRole() string { return c.Role }

// IsExpired implements reqctx.AuthClaims.
func (c *Claims) IsExpired() bool {
	return c.ExpiresAt == nil || time.Now().After(c.ExpiresAt.Time)
}
