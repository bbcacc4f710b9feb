// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// VerificationResult is the verdict of checking a plaintext password against a stored hash.
type VerificationResult int

const (
	// VerificationFailed means the password does not match the hash.
	VerificationFailed VerificationResult = iota
	// VerificationSuccess means the password matches.
	VerificationSuccess
	// VerificationSuccessRehashNeeded means the password matches but the hash
	// was produced with outdated parameters.
	VerificationSuccessRehashNeeded
)

// String returns the string representation of the VerificationResult.
func (r VerificationResult) String() string {
	switch r {
	case VerificationSuccess:
		return "Success"
	case VerificationSuccessRehashNeeded:
		return "SuccessRehashNeeded"
	default:
		return "Failed"
	}
}

// Succeeded reports whether the password matched.
func (r VerificationResult) Succeeded() bool {
	return r == VerificationSuccess || r == VerificationSuccessRehashNeeded
}

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Verify compares a plaintext password with a stored hash.
	Verify(hash, password string) VerificationResult
}
