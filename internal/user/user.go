// Package user defines the user model used throughout the application,
// particularly for registration and session authentication.
package user

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt work factor applied by HashPassword.
var PasswordHashCost = bcrypt.DefaultCost

// User represents a registered account.
type User struct {
	// ID is the store-assigned identifier, a UUID.
	ID string

	// Email is unique across users and never changes.
	Email string

	// Password is the bcrypt hash of the hex SHA-256 digest of the user's password.
	Password string
}

// prehash maps a password of any length to 64 bytes, below the bcrypt
// input limit of 72.
func prehash(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	digest := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(digest, sum[:])
	return digest
}

// HashPassword returns the one-way hash stored in place of the plaintext password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(plain), PasswordHashCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), prehash(plain)) == nil
}
