package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TokenType is the closed set of token classes the service issues.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// ParseTokenType converts the raw token_type claim value into a TokenType.
func ParseTokenType(raw string) (TokenType, error) {
	switch TokenType(raw) {
	case TokenTypeAccess:
		return TokenTypeAccess, nil
	case TokenTypeRefresh:
		return TokenTypeRefresh, nil
	default:
		return "", fmt.Errorf("unknown token type %q", raw)
	}
}

// TokenPair holds the access and refresh tokens returned from every issuance.
// It exists only in transit and is never persisted.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims is the decoded content of one token. It is derived data, recomputed
// on every parse.
type Claims struct {
	TokenType TokenType
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
	Email     string
	Role      Role
}

// RefreshToken is the persisted record that makes one outstanding refresh
// token revocable. Only a SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
