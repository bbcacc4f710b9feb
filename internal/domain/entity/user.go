// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity behind an account: who logs in and how their password is checked.
type User struct {
	ID           uuid.UUID // The Global Unique Identifier (GUID) for the user.
	Username     string    // Unique login name.
	Email        string    // Unique contact email.
	PasswordHash string    // Opaque hash produced by the PasswordHasher; never the plaintext.
	DateJoined   time.Time // Timestamp of when the user registered.
}
