package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a plaintext password into an opaque one-way verifier
// and checks plaintext candidates against it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(verifier, password string) bool
}

// BcryptHasher is the bcrypt implementation of PasswordHasher.
type BcryptHasher struct {
	// the cost determines the computational complexity of the hashing process
	// zero means bcrypt.DefaultCost (10)
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{Cost: cost}
}

// Hash creates a bcrypt hash from the given plaintext password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify checks if the provided plaintext password matches the stored bcrypt hash.
func (h *BcryptHasher) Verify(verifier, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(password)) == nil
}
