package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for staff tokens.
// Refresh tokens carry the user id only; role and name are re-read from the
// user directory when a refresh is exchanged.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"token_type"`
}
