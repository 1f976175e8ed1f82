// Package token implements signing, parsing, and hashing of the service's
// JWTs. The codec is the single place where claim layout is known; everything
// above it works with domain.Claims.
package token

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Vlad-Innowise/auth-service/internal/autherr"
	"github.com/Vlad-Innowise/auth-service/internal/domain"
)

// rolePrefix is prepended to the role name inside the roles claim.
const rolePrefix = "ROLE_"

// jwtClaims is the wire layout of the service's tokens.
type jwtClaims struct {
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	TokenType string   `json:"token_type"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 JWTs.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec creates a codec with the given signing secret, issuer name, and
// per-type lifetimes.
func NewCodec(secret, issuer string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// TTL returns the configured lifetime for the given token type.
func (c *Codec) TTL(tokenType domain.TokenType) time.Duration {
	if tokenType == domain.TokenTypeRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue creates a signed token of the given type for the user. Expiry is
// computed from now so that access and refresh tokens issued together share
// one issuance instant.
func (c *Codec) Issue(user *domain.User, tokenType domain.TokenType, now time.Time) (string, error) {
	now = now.UTC()
	claims := &jwtClaims{
		Email:     user.Email,
		Roles:     []string{rolePrefix + string(user.Role)},
		TokenType: string(tokenType),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(tokenType))),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}

	return signed, nil
}

// IssuePair creates an access and a refresh token sharing one issuance
// instant.
func (c *Codec) IssuePair(user *domain.User, now time.Time) (*domain.TokenPair, error) {
	access, err := c.Issue(user, domain.TokenTypeAccess, now)
	if err != nil {
		return nil, err
	}

	refresh, err := c.Issue(user, domain.TokenTypeRefresh, now)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify checks the signature and expiry of a raw token and extracts its
// claims. Signature and expiry failures return TOKEN_INVALID; a token that
// verifies but whose claims cannot be extracted returns CLAIMS_MALFORMED.
// Both map to 401 and neither echoes token contents.
func (c *Codec) Verify(raw string) (*domain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, autherr.TokenInvalid(err)
	}

	wire, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return nil, autherr.TokenInvalid(fmt.Errorf("token claims have unexpected type"))
	}

	claims, err := extract(wire)
	if err != nil {
		return nil, autherr.ClaimsMalformed(err)
	}

	return claims, nil
}

// extract converts wire claims into domain claims, failing closed: every
// field must be present and well formed.
func extract(wire *jwtClaims) (*domain.Claims, error) {
	if wire.Subject == "" {
		return nil, fmt.Errorf("missing sub claim")
	}
	userID, err := strconv.ParseInt(wire.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("sub claim is not a numeric user id: %w", err)
	}

	if wire.IssuedAt == nil {
		return nil, fmt.Errorf("missing iat claim")
	}
	if wire.ExpiresAt == nil {
		return nil, fmt.Errorf("missing exp claim")
	}

	if wire.Email == "" {
		return nil, fmt.Errorf("missing email claim")
	}

	if len(wire.Roles) != 1 {
		return nil, fmt.Errorf("roles claim must contain exactly one entry, got %d", len(wire.Roles))
	}
	roleName, found := strings.CutPrefix(wire.Roles[0], rolePrefix)
	if !found {
		return nil, fmt.Errorf("role %q lacks the %s prefix", wire.Roles[0], rolePrefix)
	}
	role, err := domain.ParseRole(roleName)
	if err != nil {
		return nil, err
	}

	tokenType, err := domain.ParseTokenType(wire.TokenType)
	if err != nil {
		return nil, err
	}

	return &domain.Claims{
		TokenType: tokenType,
		UserID:    userID,
		IssuedAt:  wire.IssuedAt.Time,
		ExpiresAt: wire.ExpiresAt.Time,
		Email:     wire.Email,
		Role:      role,
	}, nil
}
