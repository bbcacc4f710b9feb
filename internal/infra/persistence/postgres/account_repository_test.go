package postgres

import (
	"context"
	"testing"
	"time"

	"simpletrader/internal/domain/entity"
	domainerrors "simpletrader/internal/domain/errors"
	"simpletrader/internal/domain/repository"
	"simpletrader/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(context.Background(), db))

	return db
}

func newTestAccount(username, email string) *entity.Account {
	return entity.NewAccount(&entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$hash-for-" + username,
		DateJoined:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
}

func TestAccountRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(newTestDB(t))

	account := newTestAccount("testuser", "test@example.com")
	require.NoError(t, repo.Create(ctx, account))

	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.NotEqual(t, uuid.Nil, account.AccountHolder.ID)
	assert.False(t, account.CreatedAt.IsZero())

	byUsername, err := repo.FindByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byUsername.ID)
	assert.Equal(t, "testuser", byUsername.Username())
	assert.Equal(t, "test@example.com", byUsername.AccountHolder.Email)
	assert.Equal(t, "$2a$04$hash-for-testuser", byUsername.PasswordHash())
	assert.True(t, byUsername.AccountHolder.DateJoined.Equal(account.AccountHolder.DateJoined))

	byEmail, err := repo.FindByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)
}

func TestAccountRepository_FindMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(newTestDB(t))

	_, err := repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestAccountRepository_LookupsAreCaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(newTestDB(t))
	require.NoError(t, repo.Create(ctx, newTestAccount("testuser", "test@example.com")))

	_, err := repo.FindByUsername(ctx, "TestUser")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestAccountRepository_CreateConflicts(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
	}{
		{name: "duplicate username", username: "testuser", email: "other@example.com"},
		{name: "duplicate email", username: "otheruser", email: "test@example.com"},
		{name: "duplicate both", username: "testuser", email: "test@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := newTestDB(t)
			repo := NewAccountRepository(db)
			require.NoError(t, repo.Create(ctx, newTestAccount("testuser", "test@example.com")))

			err := repo.Create(ctx, newTestAccount(tt.username, tt.email))
			require.Error(t, err)
			assert.ErrorIs(t, err, repository.ErrAccountConflict)

			var count int64
			require.NoError(t, db.Table("accounts").Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})
	}
}

func TestAccountRepository_CreateWithoutHolder(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))

	err := repo.Create(context.Background(), &entity.Account{})
	assert.ErrorIs(t, err, domainerrors.ErrAccountCreationFailed)
}

func TestAccountRepository_CanceledContext(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindByUsername(ctx, "testuser")
	require.Error(t, err)
	assert.False(t, errors.Is(err, repository.ErrAccountNotFound))

	var appErr domainerrors.AppError
	assert.True(t, errors.As(err, &appErr))
}

func TestIsUniqueConstraintViolation(t *testing.T) {
	assert.False(t, isUniqueConstraintViolation(nil))
	assert.True(t, isUniqueConstraintViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueConstraintViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`)))
	assert.True(t, isUniqueConstraintViolation(errors.New("UNIQUE constraint failed: users.username")))
	assert.False(t, isUniqueConstraintViolation(errors.New("connection refused")))
}
