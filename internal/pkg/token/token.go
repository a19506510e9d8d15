// Package token generates the bearer tokens embedded in public share URLs.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Size is the number of random bytes behind a token (192 bits).
const Size = 24

// EncodedLen is the length of a generated token string.
var EncodedLen = base64.RawURLEncoding.EncodedLen(Size)

// Generate returns a fresh URL-safe random token.
func Generate() (string, error) {
	buf := make([]byte, Size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// WellFormed reports whether s could have been produced by Generate.
func WellFormed(s string) bool {
	if len(s) != EncodedLen {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}

// Fingerprint returns a short, non-reversible identifier for logs.
func Fingerprint(s string) string {
	sum := blake3.Sum256([]byte(s))
	return hex.EncodeToString(sum[:6])
}
