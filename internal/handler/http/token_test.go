package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Vlad-Innowise/auth-service/internal/autherr"
	"github.com/Vlad-Innowise/auth-service/internal/domain"
)

// ============================================================================
// Validate
// ============================================================================

func TestTokenHandler_Validate_Success(t *testing.T) {
	svc := new(mockAuthFacade)
	router := newTestRouter(svc)

	user := testUser()
	claims := accessClaims(user)
	svc.On("Validate", mock.Anything, "some.jwt.token").Return(claims, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/token/validate", map[string]string{
		"token": "some.jwt.token",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data ValidateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.Valid)
	assert.Equal(t, user.ID, body.Data.UserID)
	assert.Equal(t, user.Email, body.Data.Email)
	assert.Equal(t, domain.TokenTypeAccess, body.Data.TokenType)
	assert.WithinDuration(t, claims.ExpiresAt, body.Data.ExpiresAt, time.Second)
}

func TestTokenHandler_Validate_MissingToken(t *testing.T) {
	svc := new(mockAuthFacade)
	router := newTestRouter(svc)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/token/validate", map[string]string{}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCodeOf(t, rec))
	svc.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
}

func TestTokenHandler_Validate_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid token", autherr.TokenInvalid(assert.AnError), http.StatusUnauthorized, autherr.CodeTokenInvalid},
		{"malformed claims", autherr.ClaimsMalformed(assert.AnError), http.StatusUnauthorized, autherr.CodeClaimsMalformed},
		{"principal unavailable", autherr.PrincipalUnavailable(assert.AnError), http.StatusUnauthorized, autherr.CodePrincipalUnavailable},
		{"inconsistent claims", autherr.ClaimsInconsistent(), http.StatusUnauthorized, autherr.CodeClaimsInconsistent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockAuthFacade)
			router := newTestRouter(svc)

			svc.On("Validate", mock.Anything, "bad.jwt.token").Return(nil, tt.err)

			rec := doJSON(t, router, http.MethodPost, "/api/v1/token/validate", map[string]string{
				"token": "bad.jwt.token",
			}, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCodeOf(t, rec))
		})
	}
}

// ============================================================================
// Refresh
// ============================================================================

func TestTokenHandler_Refresh_Success(t *testing.T) {
	svc := new(mockAuthFacade)
	router := newTestRouter(svc)

	svc.On("Refresh", mock.Anything, "refresh.jwt.token").Return(testPair(), nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/token/refresh", map[string]string{
		"refresh_token": "refresh.jwt.token",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data domain.TokenPair `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.AccessToken)
	assert.NotEmpty(t, body.Data.RefreshToken)
}

func TestTokenHandler_Refresh_WrongTokenType(t *testing.T) {
	svc := new(mockAuthFacade)
	router := newTestRouter(svc)

	svc.On("Refresh", mock.Anything, "access.jwt.token").
		Return(nil, autherr.WrongTokenType("refresh", "access"))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/token/refresh", map[string]string{
		"refresh_token": "access.jwt.token",
	}, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, autherr.CodeWrongTokenType, errorCodeOf(t, rec))
}

func TestTokenHandler_Refresh_InvalidToken(t *testing.T) {
	svc := new(mockAuthFacade)
	router := newTestRouter(svc)

	svc.On("Refresh", mock.Anything, "expired.jwt.token").
		Return(nil, autherr.TokenInvalid(assert.AnError))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/token/refresh", map[string]string{
		"refresh_token": "expired.jwt.token",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, autherr.CodeTokenInvalid, errorCodeOf(t, rec))
}
