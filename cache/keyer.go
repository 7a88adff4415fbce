package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// KeyLength is the length of a cache key in hex characters.
const KeyLength = sha256.Size * 2

// ErrInvalidKey is returned when a key is not a well-formed cache key.
var ErrInvalidKey = errors.New("cache: key is invalid")

// ComputeKey derives the cache key for a (prompt, backend, model) triple.
//
// The key is the full SHA-256 digest, hex encoded, of the three fields
// in order. Fields are length-prefixed before hashing so that moving
// bytes between adjacent fields can never produce the same digest.
// Identical triples always yield identical keys.
func ComputeKey(prompt, backend, model string) string {
	h := sha256.New()
	var n [8]byte
	for _, field := range []string{prompt, backend, model} {
		binary.BigEndian.PutUint64(n[:], uint64(len(field)))
		h.Write(n[:])
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateKey checks that key is a well-formed cache key.
//
// Keys name files on disk, so anything that is not exactly a lowercase
// hex digest is rejected before it can reach the filesystem.
func ValidateKey(key string) error {
	if len(key) != KeyLength {
		return ErrInvalidKey
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return ErrInvalidKey
		}
	}
	return nil
}
