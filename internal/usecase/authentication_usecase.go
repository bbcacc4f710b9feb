// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"simpletrader/internal/domain/entity"
)

// --- Input DTOs ---

// LoginInput defines the credentials presented at login.
type LoginInput struct {
	Username string
	Password string
}

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

// AuthenticationUsecase logs users in and registers new accounts.
//
// Login reports failures as errors (domainerrors.ErrUserNotFound,
// domainerrors.ErrInvalidPassword). Register reports every expected outcome as
// an entity.RegistrationResult and returns an error only when the store or the
// hasher fails.
type AuthenticationUsecase interface {
	Login(ctx context.Context, input *LoginInput) (*entity.Account, error)
	Register(ctx context.Context, input *RegisterInput) (entity.RegistrationResult, error)
}
