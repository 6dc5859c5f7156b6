// Package cryptox holds the digest helpers used to fingerprint record
// payloads before they are bound to a token.
package cryptox

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Keccak256Hex returns the keccak-256 digest of data as a lowercase hex
// string. The digest is stored next to the record pointer so any holder of
// the payload can verify it against what the registry committed to.
func Keccak256Hex(data []byte) string {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter specifies the number of random bytes, so the final
// string length is twice the size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
