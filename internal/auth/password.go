package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts without truncation.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned for inputs bcrypt would reject.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// dummyHashes are compared against when no account matches, so unknown
// emails cost the same bcrypt work as wrong passwords. Keyed by cost.
var (
	dummyMu     sync.Mutex
	dummyHashes = map[int][]byte{}
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// CompareDummy burns one comparison at the given cost against a fixed hash
// and always fails.
func CompareDummy(plain string, cost int) error {
	if err := bcrypt.CompareHashAndPassword(dummyHashFor(cost), []byte(plain)); err != nil {
		return err
	}
	return bcrypt.ErrMismatchedHashAndPassword
}

func dummyHashFor(cost int) []byte {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummyMu.Lock()
	defer dummyMu.Unlock()
	if hash, ok := dummyHashes[cost]; ok {
		return hash
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte("job-board-unknown-account"), cost)
	dummyHashes[cost] = hash
	return hash
}

// NeedsRehash reports whether hashed was produced with a different cost.
func NeedsRehash(hashed string, cost int) bool {
	current, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		return true
	}
	return current != cost
}
