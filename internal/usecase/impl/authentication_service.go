// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "simpletrader/internal/delivery/context"
	"simpletrader/internal/domain/entity"
	domainerrors "simpletrader/internal/domain/errors"
	"simpletrader/internal/domain/repository"
	"simpletrader/internal/domain/service"
	"simpletrader/internal/errors"
	"simpletrader/internal/usecase"

	"go.uber.org/fx"
)

// authenticationService implements the AuthenticationUsecase interface.
type authenticationService struct {
	accountRepo repository.AccountRepository
	hasher      service.PasswordHasher
	publisher   service.EventPublisher
	logger      *slog.Logger
}

// AuthenticationServiceParams holds dependencies for AuthenticationService, injected by Fx.
type AuthenticationServiceParams struct {
	fx.In

	AccountRepo repository.AccountRepository
	Hasher      service.PasswordHasher
	Publisher   service.EventPublisher `optional:"true"`
	Logger      *slog.Logger
}

// NewAuthenticationService is the constructor for authenticationService.
func NewAuthenticationService(params AuthenticationServiceParams) usecase.AuthenticationUsecase {
	return &authenticationService{
		accountRepo: params.AccountRepo,
		hasher:      params.Hasher,
		publisher:   params.Publisher,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authenticationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login verifies the credentials and returns the stored account.
func (srv *authenticationService) Login(ctx context.Context, input *usecase.LoginInput) (*entity.Account, error) {
	srv.log(ctx).Debug("Starting login", slog.String("username", input.Username))

	account, err := srv.accountRepo.FindByUsername(ctx, input.Username)
	if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
		srv.log(ctx).Error("Failed to load account for login", slog.String("username", input.Username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to find account by username")
	}
	if account == nil {
		srv.log(ctx).Warn("Login failed", slog.String("username", input.Username), slog.Any("error", domainerrors.ErrUserNotFound))

		return nil, errors.Wrapf(domainerrors.ErrUserNotFound, "login failed for username %q", input.Username)
	}

	verdict := srv.hasher.Verify(account.PasswordHash(), input.Password)
	if !verdict.Succeeded() {
		srv.log(ctx).Warn("Login failed", slog.String("username", input.Username), slog.Any("error", domainerrors.ErrInvalidPassword))

		return nil, errors.Wrapf(domainerrors.ErrInvalidPassword, "login failed for username %q", input.Username)
	}

	if verdict == service.VerificationSuccessRehashNeeded {
		srv.log(ctx).Debug("Stored password hash uses outdated parameters", slog.Any("accountID", account.ID))
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("accountID", account.ID))

	return account, nil
}

// Register validates the request in a fixed order and creates the account.
// Order: password confirmation (no I/O), email availability, username availability.
func (srv *authenticationService) Register(ctx context.Context, input *usecase.RegisterInput) (entity.RegistrationResult, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email), slog.String("username", input.Username))

	if input.Password != input.ConfirmPassword {
		srv.log(ctx).Info("Registration rejected", slog.String("username", input.Username), slog.Any("result", entity.RegistrationPasswordsDoNotMatch))

		return entity.RegistrationPasswordsDoNotMatch, nil
	}

	result, err := srv.checkAvailability(ctx, input.Email, input.Username)
	if err != nil {
		srv.log(ctx).Error("Failed to check account availability", slog.String("username", input.Username), slog.Any("error", err))

		return 0, err
	}
	if !result.IsSuccess() {
		srv.log(ctx).Info("Registration rejected", slog.String("username", input.Username), slog.Any("result", result))

		return result, nil
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.String("username", input.Username), slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to hash password during registration")
	}

	account := entity.NewAccount(&entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DateJoined:   time.Now().UTC(),
	})

	if err := srv.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountConflict) {
			return srv.resolveConflict(ctx, input, err)
		}
		srv.log(ctx).Error("Failed to create account", slog.String("username", input.Username), slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to create account during registration")
	}

	srv.publishRegistered(ctx, account)
	srv.log(ctx).Info("Registration completed", slog.Any("accountID", account.ID))

	return entity.RegistrationSuccess, nil
}

// checkAvailability returns RegistrationSuccess when neither email nor username is taken.
func (srv *authenticationService) checkAvailability(ctx context.Context, email, username string) (entity.RegistrationResult, error) {
	taken, err := srv.exists(ctx, srv.accountRepo.FindByEmail, email)
	if err != nil {
		return 0, errors.Wrap(err, "failed to find account by email")
	}
	if taken {
		return entity.RegistrationEmailAlreadyExists, nil
	}

	taken, err = srv.exists(ctx, srv.accountRepo.FindByUsername, username)
	if err != nil {
		return 0, errors.Wrap(err, "failed to find account by username")
	}
	if taken {
		return entity.RegistrationUsernameAlreadyExists, nil
	}

	return entity.RegistrationSuccess, nil
}

func (srv *authenticationService) exists(
	ctx context.Context,
	find func(context.Context, string) (*entity.Account, error),
	key string,
) (bool, error) {
	account, err := find(ctx, key)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return account != nil, nil
}

// resolveConflict handles a Create that lost a race with a concurrent registration:
// the store rejected the insert, so look again to report which key was taken.
func (srv *authenticationService) resolveConflict(ctx context.Context, input *usecase.RegisterInput, createErr error) (entity.RegistrationResult, error) {
	srv.log(ctx).Warn("Account store rejected duplicate registration", slog.String("email", input.Email), slog.String("username", input.Username))

	result, err := srv.checkAvailability(ctx, input.Email, input.Username)
	if err != nil {
		return 0, errors.Wrap(err, "failed to resolve registration conflict")
	}
	if result.IsSuccess() {
		return 0, errors.Wrap(createErr, "registration conflict could not be attributed to email or username")
	}

	return result, nil
}

// publishRegistered announces the new account. The account is already stored,
// so a publish failure is logged and otherwise ignored.
func (srv *authenticationService) publishRegistered(ctx context.Context, account *entity.Account) {
	if srv.publisher == nil {
		return
	}

	event := &service.AccountRegisteredEvent{
		RequestID:    deliverycontext.GetRequestIDFromContext(ctx),
		AccountID:    account.ID.String(),
		Username:     account.Username(),
		Email:        account.AccountHolder.Email,
		RegisteredAt: account.AccountHolder.DateJoined,
	}

	if err := srv.publisher.PublishAccountRegistered(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish account registered event", slog.Any("accountID", account.ID), slog.Any("error", err))
	}
}
