package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Vlad-Innowise/auth-service/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user and fills in its generated ID.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetActiveByEmail retrieves the ACTIVATED user holding the given email.
	// The lookup is case-insensitive.
	GetActiveByEmail(ctx context.Context, email string) (*domain.User, error)

	// EmailTaken reports whether an ACTIVATED user already holds the email.
	EmailTaken(ctx context.Context, email string) (bool, error)

	// UpdateStatus changes the activation state of a user.
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
}

// RefreshTokenRepository defines the interface for refresh token persistence.
// Tokens are stored and looked up only by hash; all delete operations are
// idempotent so that revoking an already-absent token succeeds.
type RefreshTokenRepository interface {
	// Save stores a new refresh token record.
	Save(ctx context.Context, token *domain.RefreshToken) error

	// GetByHash retrieves a refresh token record by its hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Delete removes a refresh token record by its ID.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByHash removes a refresh token record by its hash.
	DeleteByHash(ctx context.Context, tokenHash string) error

	// DeleteByUserID removes all refresh token records for the given user.
	DeleteByUserID(ctx context.Context, userID int64) error

	// Rotate atomically removes the old record and stores its replacement.
	// If the transaction fails neither change is visible.
	Rotate(ctx context.Context, oldID uuid.UUID, next *domain.RefreshToken) error

	// ReplaceForUser atomically removes every record belonging to
	// next.UserID and stores next as the user's single tracked token.
	ReplaceForUser(ctx context.Context, next *domain.RefreshToken) error
}
