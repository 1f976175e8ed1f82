package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Vlad-Innowise/auth-service/internal/domain"
	apperrors "github.com/Vlad-Innowise/auth-service/pkg/errors"
)

// RefreshTokenRepository implements repository.RefreshTokenRepository using
// PostgreSQL. Every delete is idempotent: removing an absent record is a
// success, which keeps revocation retry-safe.
type RefreshTokenRepository struct {
	db DB
}

// NewRefreshTokenRepository creates a new PostgreSQL-backed refresh token repository.
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

const insertTokenQuery = `
	INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
	VALUES ($1, $2, $3, $4, $5)`

// Save stores a new refresh token record.
func (r *RefreshTokenRepository) Save(ctx context.Context, t *domain.RefreshToken) error {
	_, err := r.db.Exec(ctx, insertTokenQuery, t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAlreadyExists
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// GetByHash retrieves a refresh token record by its hash.
func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1`

	var t domain.RefreshToken
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		&t.ExpiresAt,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	return &t, nil
}

// Delete removes a refresh token record by its ID.
func (r *RefreshTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	return nil
}

// DeleteByHash removes a refresh token record by its hash.
func (r *RefreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash); err != nil {
		return fmt.Errorf("delete refresh token by hash: %w", err)
	}

	return nil
}

// DeleteByUserID removes all refresh token records for the given user.
func (r *RefreshTokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete refresh tokens by user: %w", err)
	}

	return nil
}

// Rotate atomically removes the old record and stores its replacement inside
// one transaction, so a failed rotation leaves the old token usable.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID uuid.UUID, next *domain.RefreshToken) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, oldID); err != nil {
		return fmt.Errorf("delete rotated token: %w", err)
	}

	if _, err := tx.Exec(ctx, insertTokenQuery,
		next.ID, next.UserID, next.TokenHash, next.ExpiresAt, next.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert rotated token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ReplaceForUser atomically removes every record belonging to next.UserID and
// stores next, so at most one refresh token is tracked per user.
func (r *RefreshTokenRepository) ReplaceForUser(ctx context.Context, next *domain.RefreshToken) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, next.UserID); err != nil {
		return fmt.Errorf("delete user tokens: %w", err)
	}

	if _, err := tx.Exec(ctx, insertTokenQuery,
		next.ID, next.UserID, next.TokenHash, next.ExpiresAt, next.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert replacement token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
