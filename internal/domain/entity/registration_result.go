package entity

import (
	"simpletrader/internal/errors"
)

// RegistrationResult is the outcome of a registration attempt.
// Every expected outcome is a value; only infrastructure failures are errors.
// The zero value is not a valid result.
type RegistrationResult int

const (
	// RegistrationSuccess means the account was created.
	RegistrationSuccess RegistrationResult = iota + 1
	// RegistrationPasswordsDoNotMatch means password and confirmation differ.
	RegistrationPasswordsDoNotMatch
	// RegistrationEmailAlreadyExists means another account uses the email.
	RegistrationEmailAlreadyExists
	// RegistrationUsernameAlreadyExists means another account uses the username.
	RegistrationUsernameAlreadyExists
)

var registrationResultNames = map[RegistrationResult]string{
	RegistrationSuccess:               "Success",
	RegistrationPasswordsDoNotMatch:   "PasswordsDoNotMatch",
	RegistrationEmailAlreadyExists:    "EmailAlreadyExists",
	RegistrationUsernameAlreadyExists: "UsernameAlreadyExists",
}

// String returns the string representation of the RegistrationResult.
func (r RegistrationResult) String() string {
	if name, ok := registrationResultNames[r]; ok {
		return name
	}

	return "Unknown"
}

// IsValid checks if the RegistrationResult is a known value.
func (r RegistrationResult) IsValid() bool {
	_, ok := registrationResultNames[r]

	return ok
}

// IsSuccess reports whether the registration created an account.
func (r RegistrationResult) IsSuccess() bool {
	return r == RegistrationSuccess
}

// MarshalText encodes the result by name.
func (r RegistrationResult) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, errors.Errorf("invalid registration result: %d", int(r))
	}

	return []byte(r.String()), nil
}

// UnmarshalText decodes a result from its name.
func (r *RegistrationResult) UnmarshalText(text []byte) error {
	for value, name := range registrationResultNames {
		if name == string(text) {
			*r = value

			return nil
		}
	}

	return errors.Errorf("unknown registration result: %q", string(text))
}
