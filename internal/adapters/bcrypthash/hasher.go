package bcrypthash

// Package bcrypthash implements the PasswordHasher port with bcrypt.

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for new hashes.
const DefaultCost = 10

// Hasher hashes and verifies passwords with bcrypt. The zero value uses
// DefaultCost.
type Hasher struct {
	cost int
}

// New returns a Hasher with DefaultCost.
func New() *Hasher {
	return &Hasher{cost: DefaultCost}
}

// NewWithCost returns a Hasher with a custom cost. Out-of-range costs fall
// back to DefaultCost.
func NewWithCost(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	cost := h.cost
	if cost == 0 {
		cost = DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash. A mismatch or a malformed
// hash is a plain negative result.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
