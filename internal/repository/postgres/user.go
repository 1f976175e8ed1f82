package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Vlad-Innowise/auth-service/internal/domain"
	apperrors "github.com/Vlad-Innowise/auth-service/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database and fills in the generated ID.
// Email uniqueness is enforced only among ACTIVATED users by a partial unique
// index, so a deactivated account does not block re-registration.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Status,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, role, status, created_at, updated_at
		FROM users
		WHERE id = $1`

	return r.scanUser(ctx, query, id)
}

// GetActiveByEmail retrieves the ACTIVATED user holding the given email.
func (r *UserRepository) GetActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, role, status, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1) AND status = $2`

	return r.scanUser(ctx, query, email, domain.StatusActivated)
}

// EmailTaken reports whether an ACTIVATED user already holds the email.
func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM users
			WHERE lower(email) = lower($1) AND status = $2
		)`

	var taken bool
	if err := r.db.QueryRow(ctx, query, email, domain.StatusActivated).Scan(&taken); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}

	return taken, nil
}

// UpdateStatus changes the activation state of a user.
func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	query := `UPDATE users SET status = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// scanUser executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}
