// Package auth implements password hashing for the account endpoints.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes  = 32
	iterations = 100000
	keyLen     = 32
)

// HashPassword derives a PBKDF2-SHA256 hash with a fresh random salt,
// encoded as "salt$hash" in hex.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	key := pbkdf2.Key([]byte(password), []byte(saltHex), iterations, keyLen, sha256.New)
	return saltHex + "$" + hex.EncodeToString(key), nil
}

// VerifyPassword checks a password against a stored "salt$hash" value in
// constant time. Stored values without a separator are legacy plaintext
// passwords and are compared directly.
func VerifyPassword(password, stored string) bool {
	salt, want, ok := strings.Cut(stored, "$")
	if !ok {
		return hmac.Equal([]byte(password), []byte(stored))
	}
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLen, sha256.New)
	return hmac.Equal([]byte(hex.EncodeToString(key)), []byte(want))
}
