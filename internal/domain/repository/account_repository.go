// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"simpletrader/internal/domain/entity"
)

// Domain-specific errors for account persistence.
// This allows the application layer to handle specific outcomes without depending on database-specific errors.
var (
	// ErrAccountNotFound is returned when no account matches the lookup key.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountConflict is returned by Create when the username or email is already taken.
	ErrAccountConflict = errors.New("account username or email already exists")
)

// AccountRepository is the account store consulted by the authentication use cases.
// Implementations must enforce username and email uniqueness atomically in Create.
type AccountRepository interface {
	// FindByUsername retrieves the account whose holder has the given username.
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)

	// FindByEmail retrieves the account whose holder has the given email.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// Create persists a new account together with its holder and fills in generated IDs.
	Create(ctx context.Context, account *entity.Account) error
}
