package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered user's credential record as stored by the account store.
type Account struct {
	ID            uuid.UUID
	AccountHolder *User
	CreatedAt     time.Time
}

// NewAccount builds an unsaved account for the given holder.
func NewAccount(holder *User) *Account {
	return &Account{
		AccountHolder: holder,
	}
}

// Username returns the holder's username, or "" for an account without a holder.
func (a *Account) Username() string {
	if a == nil || a.AccountHolder == nil {
		return ""
	}

	return a.AccountHolder.Username
}

// PasswordHash returns the holder's stored hash, or "" for an account without a holder.
func (a *Account) PasswordHash() string {
	if a == nil || a.AccountHolder == nil {
		return ""
	}

	return a.AccountHolder.PasswordHash
}
