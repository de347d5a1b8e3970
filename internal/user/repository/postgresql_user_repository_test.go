package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodnet/analytics/internal/user/domain"
)

func newMockDB(t *testing.T) (*PostgreSQLUserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgreSQLUserRepository(db), mock
}

func userColumns() []string {
	return []string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}
}

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts the account", func(t *testing.T) {
		repo, mock := newMockDB(t)
		user := &domain.User{
			ID:           uuid.Must(uuid.NewV7()),
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: "argon2id-hash",
			Role:         "user",
		}

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.ID, "alice", sqlmock.AnyArg(), "argon2id-hash", "user").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, user)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a unique violation to already exists", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_username_key"`))

		err := repo.Create(ctx, &domain.User{ID: uuid.Must(uuid.NewV7()), Username: "alice"})
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})

	t.Run("wraps other database errors", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(errors.New("connection reset"))

		err := repo.Create(ctx, &domain.User{ID: uuid.Must(uuid.NewV7()), Username: "alice"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrUserAlreadyExists)
	})
}

func TestPostgreSQLUserRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored account", func(t *testing.T) {
		repo, mock := newMockDB(t)
		id := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email, password_hash, role")).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userColumns()).
				AddRow(id, "alice", "alice@example.com", "argon2id-hash", "admin", now, now))

		user, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "admin", user.Role)
	})

	t.Run("null email maps to an empty string", func(t *testing.T) {
		repo, mock := newMockDB(t)
		now := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email, password_hash, role")).
			WithArgs("bob").
			WillReturnRows(sqlmock.NewRows(userColumns()).
				AddRow(uuid.Must(uuid.NewV7()), "bob", nil, "argon2id-hash", "user", now, now))

		user, err := repo.GetByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, user.Email)
	})

	t.Run("missing account returns not found", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email, password_hash, role")).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(userColumns()))

		_, err := repo.GetByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestPostgreSQLUserRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("returns accounts in order", func(t *testing.T) {
		repo, mock := newMockDB(t)
		now := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY username LIMIT $1 OFFSET $2")).
			WithArgs(50, 0).
			WillReturnRows(sqlmock.NewRows(userColumns()).
				AddRow(uuid.Must(uuid.NewV7()), "alice", "alice@example.com", "hash-a", "admin", now, now).
				AddRow(uuid.Must(uuid.NewV7()), "bob", nil, "hash-b", "user", now, now))

		users, err := repo.List(ctx, 50, 0)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "bob", users[1].Username)
		assert.Empty(t, users[1].Email)
	})

	t.Run("empty table returns no accounts", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY username")).
			WithArgs(50, 0).
			WillReturnRows(sqlmock.NewRows(userColumns()))

		users, err := repo.List(ctx, 50, 0)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}
