package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vlad-Innowise/auth-service/internal/domain"
	apperrors "github.com/Vlad-Innowise/auth-service/pkg/errors"
)

func newTokenTestFixture(t *testing.T) (*RefreshTokenRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewRefreshTokenRepository(mock)
	return repo, mock
}

func sampleToken() *domain.RefreshToken {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    7,
		TokenHash: "aabbccdd00112233aabbccdd00112233aabbccdd00112233aabbccdd00112233",
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
	}
}

func tokenRow(tok *domain.RefreshToken) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at"}).
		AddRow(tok.ID, tok.UserID, tok.TokenHash, tok.ExpiresAt, tok.CreatedAt)
}

func TestRefreshTokenRepository_Save_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tok := sampleToken()

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(tok.ID, tok.UserID, tok.TokenHash, tok.ExpiresAt, tok.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Save(context.Background(), tok)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Save_DuplicateHash(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tok := sampleToken()

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(tok.ID, tok.UserID, tok.TokenHash, tok.ExpiresAt, tok.CreatedAt).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Save(context.Background(), tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_GetByHash_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tok := sampleToken()

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token_hash =").
		WithArgs(tok.TokenHash).
		WillReturnRows(tokenRow(tok))

	got, err := repo.GetByHash(context.Background(), tok.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, tok, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_GetByHash_NotFound(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token_hash =").
		WithArgs("missing-hash").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByHash(context.Background(), "missing-hash")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Deletes succeed even when nothing matches, so revocation can be retried.
func TestRefreshTokenRepository_Delete_IdempotentOnAbsent(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	id := uuid.New()

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE id =").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), id)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_DeleteByHash_IdempotentOnAbsent(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token_hash =").
		WithArgs("missing-hash").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteByHash(context.Background(), "missing-hash")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_DeleteByUserID(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE user_id =").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	err := repo.DeleteByUserID(context.Background(), 7)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Rotate_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	oldID := uuid.New()
	next := sampleToken()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE id =").
		WithArgs(oldID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(next.ID, next.UserID, next.TokenHash, next.ExpiresAt, next.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.Rotate(context.Background(), oldID, next)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Rotate_InsertFailureRollsBack(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	oldID := uuid.New()
	next := sampleToken()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE id =").
		WithArgs(oldID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(next.ID, next.UserID, next.TokenHash, next.ExpiresAt, next.CreatedAt).
		WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	err := repo.Rotate(context.Background(), oldID, next)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_ReplaceForUser_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	next := sampleToken()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE user_id =").
		WithArgs(next.UserID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(next.ID, next.UserID, next.TokenHash, next.ExpiresAt, next.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.ReplaceForUser(context.Background(), next)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
