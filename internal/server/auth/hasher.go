// Package auth holds the credential hasher and the token service used by the
// authentication flow. Neither does any I/O.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"golang.org/x/crypto/argon2"
)

// Hasher turns a password and its salt into the stored digest. Implementations
// must be deterministic.
type Hasher interface {
	Hash(password, salt string) string
}

// SHA256Hasher computes base64(sha256(password || salt)). This is the format
// of every hash already stored in the users table.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Argon2Hasher derives the digest with argon2id. Parameters are fixed per
// deployment; changing them invalidates stored hashes.
type Argon2Hasher struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
}

// NewArgon2Hasher returns an Argon2Hasher with the RFC 9106 second
// recommended parameter set.
func NewArgon2Hasher() Argon2Hasher {
	return Argon2Hasher{Time: 3, Memory: 64 * 1024, Threads: 4, KeyLen: 32}
}

func (h Argon2Hasher) Hash(password, salt string) string {
	key := argon2.IDKey([]byte(password), []byte(salt), h.Time, h.Memory, h.Threads, h.KeyLen)
	return base64.StdEncoding.EncodeToString(key)
}

// NewHasher returns the hasher for a configured scheme name.
func NewHasher(scheme string) (Hasher, error) {
	switch scheme {
	case "", "sha256":
		return SHA256Hasher{}, nil
	case "argon2id":
		return NewArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("unknown hash scheme %q", scheme)
	}
}

// GenerateSalt returns n random bytes, base64 encoded.
func GenerateSalt(n int) (string, error) {
	b := common.GenerateRandByteArray(n)
	if b == nil {
		return "", errors.New("random source unavailable")
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// CheckPassword re-hashes candidate with salt and compares it with stored in
// constant time.
func CheckPassword(h Hasher, candidate, salt, stored string) bool {
	got := h.Hash(candidate, salt)
	return subtle.ConstantTimeCompare([]byte(got), []byte(stored)) == 1
}
