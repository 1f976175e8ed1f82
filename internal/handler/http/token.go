package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Vlad-Innowise/auth-service/internal/domain"
	"github.com/Vlad-Innowise/auth-service/pkg/httputil"
	"github.com/Vlad-Innowise/auth-service/pkg/validator"
)

// TokenHandler handles HTTP requests for the token endpoints.
type TokenHandler struct {
	service AuthFacade
	logger  *slog.Logger
}

// NewTokenHandler creates a new token HTTP handler.
func NewTokenHandler(svc AuthFacade, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{service: svc, logger: logger}
}

// ValidateRequest is the JSON request body for token validation.
type ValidateRequest struct {
	Token string `json:"token" validate:"required"`
}

// RefreshRequest is the JSON request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ValidateResponse reports the decoded claims of a valid token.
type ValidateResponse struct {
	Valid     bool             `json:"valid"`
	UserID    int64            `json:"user_id"`
	Email     string           `json:"email"`
	Role      domain.Role      `json:"role"`
	TokenType domain.TokenType `json:"token_type"`
	IssuedAt  time.Time        `json:"issued_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Validate handles POST /api/v1/token/validate
func (h *TokenHandler) Validate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	claims, err := h.service.Validate(r.Context(), req.Token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: ValidateResponse{
			Valid:     true,
			UserID:    claims.UserID,
			Email:     claims.Email,
			Role:      claims.Role,
			TokenType: claims.TokenType,
			IssuedAt:  claims.IssuedAt,
			ExpiresAt: claims.ExpiresAt,
		},
	})
}

// Refresh handles POST /api/v1/token/refresh
func (h *TokenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: tokens})
}
