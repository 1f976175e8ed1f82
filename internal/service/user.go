package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Vlad-Innowise/auth-service/internal/autherr"
	"github.com/Vlad-Innowise/auth-service/internal/domain"
	"github.com/Vlad-Innowise/auth-service/internal/repository"
	apperrors "github.com/Vlad-Innowise/auth-service/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// UserDirectory resolves and manages principals. The auth facade depends on
// this capability rather than on the user service directly.
type UserDirectory interface {
	// Create registers a new user account.
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)

	// GetActiveByID resolves the ACTIVATED user with the given ID.
	GetActiveByID(ctx context.Context, id int64) (*domain.User, error)

	// Authenticate checks the email and password of an active user.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// Deactivate marks the user as DEACTIVATED and returns the record.
	Deactivate(ctx context.Context, id int64) (*domain.User, error)

	// IsEmailFree reports whether no ACTIVATED user holds the email.
	IsEmailFree(ctx context.Context, email string) (bool, error)
}

// CreateUserInput holds the parameters for registering a new user.
type CreateUserInput struct {
	Email    string
	Password string
	Role     domain.Role
}

// UserService implements UserDirectory on top of the user repository.
type UserService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Create registers a new user account with a bcrypt-hashed password.
// A deactivated account holding the same email does not block registration.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}
	if input.Role == "" {
		input.Role = domain.RoleUser
	}

	taken, err := s.userRepo.EmailTaken(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check email availability: %w", err)
	}
	if taken {
		return nil, apperrors.AlreadyExists("user", "email", input.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        input.Email,
		PasswordHash: string(hashed),
		Role:         input.Role,
		Status:       domain.StatusActivated,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The partial unique index still guards against a concurrent
	// registration racing the availability check above.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// GetActiveByID resolves the ACTIVATED user with the given ID. A missing or
// deactivated account both resolve to not found.
func (s *UserService) GetActiveByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !user.IsActive() {
		return nil, apperrors.ErrNotFound
	}

	return user, nil
}

// Authenticate checks the email and password of an active user. Unknown
// email, wrong password, and a deactivated account all produce the same
// failure so responses do not leak which one it was.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, autherr.AuthenticationFailed()
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, autherr.AuthenticationFailed()
	}

	return user, nil
}

// Deactivate marks the user as DEACTIVATED, freeing the email for
// re-registration, and returns the record as it was before deactivation.
func (s *UserService) Deactivate(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateStatus(ctx, id, domain.StatusDeactivated); err != nil {
		return nil, fmt.Errorf("deactivate user: %w", err)
	}

	s.logger.InfoContext(ctx, "user deactivated",
		slog.Int64("user_id", id),
	)

	return user, nil
}

// IsEmailFree reports whether no ACTIVATED user holds the email.
func (s *UserService) IsEmailFree(ctx context.Context, email string) (bool, error) {
	taken, err := s.userRepo.EmailTaken(ctx, email)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
