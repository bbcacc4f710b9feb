package impl

import (
	"context"
	"testing"

	"simpletrader/internal/domain/entity"
	domainerrors "simpletrader/internal/domain/errors"
	"simpletrader/internal/domain/repository"
	"simpletrader/internal/domain/service"
	mockRepo "simpletrader/internal/mocks/repository"
	mockSvc "simpletrader/internal/mocks/service"
	"simpletrader/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthenticationService_Login_Success(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	stored := newStoredAccount("testuser", "test@example.com", "hashedpassword")

	fx.accountRepo.EXPECT().FindByUsername(ctx, "testuser").Return(stored, nil)
	fx.hasher.EXPECT().Verify("hashedpassword", "testpassword").Return(service.VerificationSuccess)

	account, err := fx.service.Login(ctx, &usecase.LoginInput{Username: "testuser", Password: "testpassword"})

	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Same(t, stored, account)
	assert.Equal(t, "testuser", account.AccountHolder.Username)
	assert.Equal(t, "hashedpassword", account.AccountHolder.PasswordHash)
}

func TestAuthenticationService_Login_RehashNeededStillSucceeds(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	stored := newStoredAccount("testuser", "test@example.com", "oldhash")

	fx.accountRepo.EXPECT().FindByUsername(ctx, "testuser").Return(stored, nil)
	fx.hasher.EXPECT().Verify("oldhash", "testpassword").Return(service.VerificationSuccessRehashNeeded)

	account, err := fx.service.Login(ctx, &usecase.LoginInput{Username: "testuser", Password: "testpassword"})

	require.NoError(t, err)
	assert.Equal(t, stored.ID, account.ID)
}

func TestAuthenticationService_Login_UserNotFound(t *testing.T) {
	for _, password := range []string{"testpassword", "", "x"} {
		t.Run("password="+password, func(t *testing.T) {
			fx := createTestAuthenticationService(t)

			ctx := context.Background()
			fx.accountRepo.EXPECT().FindByUsername(ctx, "ghost").Return(nil, repository.ErrAccountNotFound)

			account, err := fx.service.Login(ctx, &usecase.LoginInput{Username: "ghost", Password: password})

			assert.Nil(t, account)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
			assert.False(t, errors.Is(err, domainerrors.ErrInvalidPassword))
		})
	}
}

func TestAuthenticationService_Login_NilAccountIsUserNotFound(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	fx.accountRepo.EXPECT().FindByUsername(ctx, "ghost").Return(nil, nil)

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Username: "ghost", Password: "x"})

	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestAuthenticationService_Login_InvalidPassword(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	stored := newStoredAccount("testuser", "test@example.com", "hashedpassword")

	fx.accountRepo.EXPECT().FindByUsername(ctx, "testuser").Return(stored, nil)
	fx.hasher.EXPECT().Verify("hashedpassword", "wrong").Return(service.VerificationFailed)

	account, err := fx.service.Login(ctx, &usecase.LoginInput{Username: "testuser", Password: "wrong"})

	assert.Nil(t, account)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidPassword))

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "INVALID_PASSWORD", appErr.ErrorCode())
}

func TestAuthenticationService_Login_StoreFailurePropagates(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fx.accountRepo.EXPECT().FindByUsername(ctx, "testuser").Return(nil, ctx.Err())

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Username: "testuser", Password: "testpassword"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, domainerrors.ErrUserNotFound))
	assert.Contains(t, err.Error(), "failed to find account by username")
}

func TestAuthenticationService_Register_Success(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:           "test@example.com",
		Username:        "testuser",
		Password:        "testpassword",
		ConfirmPassword: "testpassword",
	}
	accountID := uuid.New()

	fx.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrAccountNotFound)
	fx.accountRepo.EXPECT().FindByUsername(ctx, input.Username).Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	fx.accountRepo.EXPECT().
		Create(ctx, mock.MatchedBy(func(account *entity.Account) bool {
			return account.AccountHolder != nil &&
				account.AccountHolder.Email == input.Email &&
				account.AccountHolder.Username == input.Username &&
				account.AccountHolder.PasswordHash == "hashed_password" &&
				!account.AccountHolder.DateJoined.IsZero()
		})).
		Run(func(ctx context.Context, account *entity.Account) {
			account.ID = accountID
		}).
		Return(nil)
	fx.publisher.EXPECT().
		PublishAccountRegistered(ctx, mock.MatchedBy(func(event *service.AccountRegisteredEvent) bool {
			return event.AccountID == accountID.String() && event.Username == input.Username && event.Email == input.Email
		})).
		Return(nil)

	result, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationSuccess, result)
}

func TestAuthenticationService_Register_PasswordsDoNotMatch(t *testing.T) {
	fx := createTestAuthenticationService(t)

	result, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Email:           "email",
		Username:        "username",
		Password:        "password",
		ConfirmPassword: "differentPassword",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationPasswordsDoNotMatch, result)
	fx.accountRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	fx.accountRepo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
}

// Password confirmation is checked before any lookup, so it wins over existing accounts.
func TestAuthenticationService_Register_PasswordMismatchTakesPrecedenceOverExistingAccount(t *testing.T) {
	fx := createTestAuthenticationService(t)

	result, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Email:           "taken@example.com",
		Username:        "takenuser",
		Password:        "testpassword",
		ConfirmPassword: "invalidpassword",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationPasswordsDoNotMatch, result)
	fx.hasher.AssertNotCalled(t, "Hash", mock.Anything)
}

func TestAuthenticationService_Register_EmailAlreadyExists(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:           "test@example.com",
		Username:        "testuser",
		Password:        "testpassword",
		ConfirmPassword: "testpassword",
	}

	fx.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(newStoredAccount("other", input.Email, "h"), nil)

	result, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationEmailAlreadyExists, result)
	fx.accountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// Email is checked before username, so an input colliding on both reports the email.
func TestAuthenticationService_Register_EmailCheckedBeforeUsername(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:           "test@example.com",
		Username:        "testuser",
		Password:        "testpassword",
		ConfirmPassword: "testpassword",
	}

	fx.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(newStoredAccount("testuser", input.Email, "h"), nil)

	result, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationEmailAlreadyExists, result)
	fx.accountRepo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
}

func TestAuthenticationService_Register_UsernameAlreadyExists(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:           "new@example.com",
		Username:        "testuser",
		Password:        "testpassword",
		ConfirmPassword: "testpassword",
	}

	fx.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrAccountNotFound)
	fx.accountRepo.EXPECT().FindByUsername(ctx, input.Username).Return(newStoredAccount(input.Username, "old@example.com", "h"), nil)

	result, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationUsernameAlreadyExists, result)
}

func TestAuthenticationService_Register_LookupFailure(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	dbError := errors.New("database connection failed")
	input := &usecase.RegisterInput{
		Email:           "new@example.com",
		Username:        "testuser",
		Password:        "testpassword",
		ConfirmPassword: "testpassword",
	}

	fx.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, dbError)

	result, err := fx.service.Register(ctx, input)

	require.Error(t, err)
	assert.False(t, result.IsValid())
	assert.True(t, errors.Is(err, dbError))
	assert.Contains(t, err.Error(), "failed to find account by email")
}

func TestAuthenticationService_Register_HashFailure(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:           "new@example.com",
		Username:        "testuser",
		Password:        "testpassword",
		ConfirmPassword: "testpassword",
	}

	fx.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrAccountNotFound)
	fx.accountRepo.EXPECT().FindByUsername(ctx, input.Username).Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(input.Password).Return("", errors.New("hash failed"))

	result, err := fx.service.Register(ctx, input)

	require.Error(t, err)
	assert.False(t, result.IsValid())
	assert.Contains(t, err.Error(), "failed to hash password during registration")
}

func TestAuthenticationService_Register_CreateFailure(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:           "new@example.com",
		Username:        "testuser",
		Password:        "testpassword",
		ConfirmPassword: "testpassword",
	}
	dbError := domainerrors.NewDatabaseExecuteError(errors.New("connection reset"), "failed to create account")

	fx.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrAccountNotFound)
	fx.accountRepo.EXPECT().FindByUsername(ctx, input.Username).Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	fx.accountRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Account")).Return(dbError)

	result, err := fx.service.Register(ctx, input)

	require.Error(t, err)
	assert.False(t, result.IsValid())
	assert.Contains(t, err.Error(), "failed to create account during registration")
	fx.publisher.AssertNotCalled(t, "PublishAccountRegistered", mock.Anything, mock.Anything)
}

// A concurrent registration can take the username between the pre-check and the insert.
func TestAuthenticationService_Register_ConflictOnCreateMapsToTakenKey(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:           "new@example.com",
		Username:        "testuser",
		Password:        "testpassword",
		ConfirmPassword: "testpassword",
	}
	winner := newStoredAccount(input.Username, "winner@example.com", "h")

	fx.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrAccountNotFound).Twice()
	fx.accountRepo.EXPECT().FindByUsername(ctx, input.Username).Return(nil, repository.ErrAccountNotFound).Once()
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	fx.accountRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Account")).Return(repository.ErrAccountConflict)
	fx.accountRepo.EXPECT().FindByUsername(ctx, input.Username).Return(winner, nil).Once()

	result, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationUsernameAlreadyExists, result)
	fx.publisher.AssertNotCalled(t, "PublishAccountRegistered", mock.Anything, mock.Anything)
}

func TestAuthenticationService_Register_UnattributedConflictIsError(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:           "new@example.com",
		Username:        "testuser",
		Password:        "testpassword",
		ConfirmPassword: "testpassword",
	}

	fx.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrAccountNotFound)
	fx.accountRepo.EXPECT().FindByUsername(ctx, input.Username).Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	fx.accountRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Account")).Return(repository.ErrAccountConflict)

	result, err := fx.service.Register(ctx, input)

	require.Error(t, err)
	assert.False(t, result.IsValid())
	assert.True(t, errors.Is(err, repository.ErrAccountConflict))
}

func TestAuthenticationService_Register_PublishFailureDoesNotFailRegistration(t *testing.T) {
	fx := createTestAuthenticationService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:           "new@example.com",
		Username:        "testuser",
		Password:        "testpassword",
		ConfirmPassword: "testpassword",
	}

	fx.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrAccountNotFound)
	fx.accountRepo.EXPECT().FindByUsername(ctx, input.Username).Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	fx.accountRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Account")).Return(nil)
	fx.publisher.EXPECT().PublishAccountRegistered(ctx, mock.AnythingOfType("*service.AccountRegisteredEvent")).Return(errors.New("broker unavailable"))

	result, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationSuccess, result)
}

func TestAuthenticationService_Register_WithoutPublisher(t *testing.T) {
	accountRepo := mockRepo.NewMockAccountRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	svc := NewAuthenticationService(AuthenticationServiceParams{
		AccountRepo: accountRepo,
		Hasher:      hasher,
		Logger:      newDiscardLogger(),
	})

	ctx := context.Background()
	accountRepo.EXPECT().FindByEmail(ctx, "new@example.com").Return(nil, repository.ErrAccountNotFound)
	accountRepo.EXPECT().FindByUsername(ctx, "testuser").Return(nil, repository.ErrAccountNotFound)
	hasher.EXPECT().Hash("testpassword").Return("hashed_password", nil)
	accountRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Account")).Return(nil)

	result, err := svc.Register(ctx, &usecase.RegisterInput{
		Email:           "new@example.com",
		Username:        "testuser",
		Password:        "testpassword",
		ConfirmPassword: "testpassword",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationSuccess, result)
}
