package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vlad-Innowise/auth-service/internal/autherr"
	"github.com/Vlad-Innowise/auth-service/internal/domain"
	apperrors "github.com/Vlad-Innowise/auth-service/pkg/errors"
)

const (
	testSecret = "test-secret-key-that-is-long-enough-0123"
	testIssuer = "auth-service"
)

func newTestCodec() *Codec {
	return NewCodec(testSecret, testIssuer, 15*time.Minute, 24*time.Hour)
}

func testUser() *domain.User {
	return &domain.User{
		ID:     42,
		Email:  "alice@example.com",
		Role:   domain.RoleUser,
		Status: domain.StatusActivated,
	}
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestCodec_IssueAndVerify(t *testing.T) {
	codec := newTestCodec()
	user := testUser()
	now := time.Now()

	for _, tokenType := range []domain.TokenType{domain.TokenTypeAccess, domain.TokenTypeRefresh} {
		t.Run(string(tokenType), func(t *testing.T) {
			raw, err := codec.Issue(user, tokenType, now)
			require.NoError(t, err)

			claims, err := codec.Verify(raw)
			require.NoError(t, err)

			assert.Equal(t, tokenType, claims.TokenType)
			assert.Equal(t, user.ID, claims.UserID)
			assert.Equal(t, user.Email, claims.Email)
			assert.Equal(t, user.Role, claims.Role)
			assert.WithinDuration(t, now.UTC(), claims.IssuedAt, time.Second)
			assert.WithinDuration(t, now.UTC().Add(codec.TTL(tokenType)), claims.ExpiresAt, time.Second)
		})
	}
}

func TestCodec_IssuePair_SharedIssuanceInstant(t *testing.T) {
	codec := newTestCodec()
	now := time.Now()

	pair, err := codec.IssuePair(testUser(), now)
	require.NoError(t, err)

	access, err := codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := codec.Verify(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, access.IssuedAt, refresh.IssuedAt)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt),
		"refresh token must outlive the access token issued with it")
}

func TestCodec_Verify_TamperedToken(t *testing.T) {
	codec := newTestCodec()

	raw, err := codec.Issue(testUser(), domain.TokenTypeAccess, time.Now())
	require.NoError(t, err)

	// Flip one byte in the payload section.
	tampered := []byte(raw)
	tampered[len(tampered)/2] ^= 0x01

	_, err = codec.Verify(string(tampered))
	require.Error(t, err)
	assert.Equal(t, autherr.CodeTokenInvalid, errCode(t, err))
}

func TestCodec_Verify_WrongSecret(t *testing.T) {
	codec := newTestCodec()
	other := NewCodec("another-secret-key-that-is-long-enough", testIssuer, 15*time.Minute, 24*time.Hour)

	raw, err := other.Issue(testUser(), domain.TokenTypeAccess, time.Now())
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.Error(t, err)
	assert.Equal(t, autherr.CodeTokenInvalid, errCode(t, err))
}

func TestCodec_Verify_ExpiredToken(t *testing.T) {
	codec := newTestCodec()

	raw, err := codec.Issue(testUser(), domain.TokenTypeAccess, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.Error(t, err)
	assert.Equal(t, autherr.CodeTokenInvalid, errCode(t, err))
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestCodec_Verify_WrongIssuer(t *testing.T) {
	codec := newTestCodec()
	other := NewCodec(testSecret, "someone-else", 15*time.Minute, 24*time.Hour)

	raw, err := other.Issue(testUser(), domain.TokenTypeAccess, time.Now())
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.Error(t, err)
	assert.Equal(t, autherr.CodeTokenInvalid, errCode(t, err))
}

// signRaw builds a validly signed token with arbitrary claims so malformed
// claim layouts can be exercised against Verify.
func signRaw(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return raw
}

func TestCodec_Verify_MalformedClaims(t *testing.T) {
	codec := newTestCodec()
	now := time.Now()

	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"iss":        testIssuer,
			"sub":        "42",
			"iat":        now.Unix(),
			"exp":        now.Add(time.Hour).Unix(),
			"email":      "alice@example.com",
			"roles":      []string{"ROLE_USER"},
			"token_type": "access",
		}
	}

	tests := []struct {
		name   string
		mutate func(jwt.MapClaims)
	}{
		{"missing sub", func(c jwt.MapClaims) { delete(c, "sub") }},
		{"non-numeric sub", func(c jwt.MapClaims) { c["sub"] = "not-a-number" }},
		{"missing iat", func(c jwt.MapClaims) { delete(c, "iat") }},
		{"missing email", func(c jwt.MapClaims) { delete(c, "email") }},
		{"empty roles", func(c jwt.MapClaims) { c["roles"] = []string{} }},
		{"two roles", func(c jwt.MapClaims) { c["roles"] = []string{"ROLE_USER", "ROLE_ADMIN"} }},
		{"unprefixed role", func(c jwt.MapClaims) { c["roles"] = []string{"USER"} }},
		{"unknown role", func(c jwt.MapClaims) { c["roles"] = []string{"ROLE_SUPERUSER"} }},
		{"missing token_type", func(c jwt.MapClaims) { delete(c, "token_type") }},
		{"unknown token_type", func(c jwt.MapClaims) { c["token_type"] = "session" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := base()
			tt.mutate(claims)

			_, err := codec.Verify(signRaw(t, claims))
			require.Error(t, err)
			assert.Equal(t, autherr.CodeClaimsMalformed, errCode(t, err))
		})
	}
}

func TestCodec_Verify_MissingExpIsInvalid(t *testing.T) {
	codec := newTestCodec()

	claims := jwt.MapClaims{
		"iss":        testIssuer,
		"sub":        "42",
		"iat":        time.Now().Unix(),
		"email":      "alice@example.com",
		"roles":      []string{"ROLE_USER"},
		"token_type": "access",
	}

	// Expiry is enforced during parsing, before claim extraction.
	_, err := codec.Verify(signRaw(t, claims))
	require.Error(t, err)
	assert.Equal(t, autherr.CodeTokenInvalid, errCode(t, err))
}

func TestHash(t *testing.T) {
	h1 := Hash("some-refresh-token")
	h2 := Hash("some-refresh-token")
	h3 := Hash("another-refresh-token")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", h1)
	assert.NotContains(t, h1, "some-refresh-token")
}
