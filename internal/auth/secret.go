// File: internal/auth/secret.go
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks login attempts against the configured shared secret.
// Only the bcrypt hash is kept in memory.
type Verifier struct {
	hash []byte
}

// NewVerifier hashes password. An empty password yields a verifier that
// rejects every attempt.
func NewVerifier(password string) (*Verifier, error) {
	if password == "" {
		return &Verifier{}, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, errors.New("AUTH_PASSWORD must be at most 72 bytes")
		}
		return nil, err
	}
	return &Verifier{hash: hash}, nil
}

// Configured reports whether a secret was set.
func (v *Verifier) Configured() bool { return len(v.hash) > 0 }

// Verify reports whether candidate matches the secret.
func (v *Verifier) Verify(candidate string) bool {
	if !v.Configured() || candidate == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(candidate)) == nil
}
