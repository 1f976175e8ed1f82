package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Vlad-Innowise/auth-service/internal/autherr"
	"github.com/Vlad-Innowise/auth-service/internal/domain"
	"github.com/Vlad-Innowise/auth-service/internal/event"
	"github.com/Vlad-Innowise/auth-service/internal/repository"
	"github.com/Vlad-Innowise/auth-service/internal/token"
	apperrors "github.com/Vlad-Innowise/auth-service/pkg/errors"
)

// AuthService is the facade over registration, login, token validation,
// refresh rotation, and account removal. It owns the ordering rules between
// the user directory and the refresh token store.
type AuthService struct {
	users    UserDirectory
	tokens   repository.RefreshTokenRepository
	codec    *token.Codec
	producer *event.Producer
	logger   *slog.Logger
}

// NewAuthService creates a new auth facade.
func NewAuthService(
	users UserDirectory,
	tokens repository.RefreshTokenRepository,
	codec *token.Codec,
	producer *event.Producer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		codec:    codec,
		producer: producer,
		logger:   logger,
	}
}

// Register creates a new user account and signs it in, returning the user
// together with its first token pair.
func (s *AuthService) Register(ctx context.Context, input CreateUserInput) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.Create(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	pair, record, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.tokens.Save(ctx, record); err != nil {
		return nil, nil, fmt.Errorf("persist refresh token: %w", err)
	}

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, pair, nil
}

// Login authenticates a user and issues a fresh token pair. The new refresh
// token replaces any previously tracked token for the user, so at most one
// session per user is refreshable at a time.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	pair, record, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.tokens.ReplaceForUser(ctx, record); err != nil {
		return nil, nil, fmt.Errorf("persist refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID),
	)

	return user, pair, nil
}

// Validate verifies a token end to end: signature and expiry, claim shape,
// principal availability, and claims consistency. It returns the decoded
// claims so callers can act on the identity without reparsing.
func (s *AuthService) Validate(ctx context.Context, raw string) (*domain.Claims, error) {
	claims, err := s.codec.Verify(raw)
	if err != nil {
		return nil, err
	}

	if _, err := s.resolvePrincipal(ctx, claims, raw); err != nil {
		return nil, err
	}

	return claims, nil
}

// Refresh exchanges a valid refresh token for a new token pair, consuming the
// presented token. The state machine is strictly ordered: verify, type check,
// principal resolution, consistency check, then rotation. A verified token
// with no stored record is re-admitted with a fresh record rather than
// rejected, which tolerates a lost store without locking users out.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*domain.TokenPair, error) {
	claims, err := s.codec.Verify(raw)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != domain.TokenTypeRefresh {
		return nil, autherr.WrongTokenType(string(domain.TokenTypeRefresh), string(claims.TokenType))
	}

	user, err := s.resolvePrincipal(ctx, claims, raw)
	if err != nil {
		return nil, err
	}

	pair, record, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	stored, err := s.tokens.GetByHash(ctx, token.Hash(raw))
	switch {
	case err == nil:
		// Normal rotation: the old record and its replacement swap
		// atomically, so a failed swap leaves the old token usable.
		if err := s.tokens.Rotate(ctx, stored.ID, record); err != nil {
			return nil, fmt.Errorf("rotate refresh token: %w", err)
		}
	case errors.Is(err, apperrors.ErrNotFound):
		s.logger.WarnContext(ctx, "refresh token verified but not tracked, re-admitting",
			slog.Int64("user_id", user.ID),
		)
		if err := s.tokens.Save(ctx, record); err != nil {
			return nil, fmt.Errorf("persist refresh token: %w", err)
		}
	default:
		return nil, fmt.Errorf("look up refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.Int64("user_id", user.ID),
	)

	return pair, nil
}

// Delete revokes all of the user's refresh tokens and then deactivates the
// account. Revocation comes first so a failure between the two steps never
// leaves a deactivated user with live refresh tokens.
func (s *AuthService) Delete(ctx context.Context, userID int64) error {
	if err := s.tokens.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}

	user, err := s.users.Deactivate(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.producer.PublishUserDeactivated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.deactivated event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// issuePair creates a token pair and the store record tracking its refresh
// half. Callers persist the record before handing the pair out, so a pair is
// never observable without its record.
func (s *AuthService) issuePair(user *domain.User) (*domain.TokenPair, *domain.RefreshToken, error) {
	now := time.Now().UTC()

	pair, err := s.codec.IssuePair(user, now)
	if err != nil {
		return nil, nil, fmt.Errorf("issue token pair: %w", err)
	}

	record := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: token.Hash(pair.RefreshToken),
		ExpiresAt: now.Add(s.codec.TTL(domain.TokenTypeRefresh)),
		CreatedAt: now,
	}

	return pair, record, nil
}

// resolvePrincipal maps verified claims onto an active user and checks that
// the claims still describe that user. On either failure the presented token,
// if it is a refresh token, is scrubbed from the store before the error is
// returned; the scrub is durable independently of any caller transaction.
func (s *AuthService) resolvePrincipal(ctx context.Context, claims *domain.Claims, raw string) (*domain.User, error) {
	user, err := s.users.GetActiveByID(ctx, claims.UserID)
	if err != nil {
		s.cleanupIfRefresh(ctx, claims, raw)
		return nil, autherr.PrincipalUnavailable(err)
	}

	if !claimsConsistent(claims, user) {
		s.cleanupIfRefresh(ctx, claims, raw)
		return nil, autherr.ClaimsInconsistent()
	}

	return user, nil
}

// cleanupIfRefresh removes the stored record of a refresh token that failed
// principal resolution. The delete is idempotent, so an untracked token is
// not an error.
func (s *AuthService) cleanupIfRefresh(ctx context.Context, claims *domain.Claims, raw string) {
	if claims.TokenType != domain.TokenTypeRefresh {
		return
	}

	if err := s.tokens.DeleteByHash(ctx, token.Hash(raw)); err != nil {
		s.logger.ErrorContext(ctx, "failed to scrub rejected refresh token",
			slog.Int64("user_id", claims.UserID),
			slog.String("error", err.Error()),
		)
	}
}

// claimsConsistent reports whether the token claims still describe the user.
// Email comparison is case-insensitive; the role must match exactly.
func claimsConsistent(claims *domain.Claims, user *domain.User) bool {
	return strings.EqualFold(claims.Email, user.Email) && claims.Role == user.Role
}
