// Package password wraps bcrypt hashing so callers never touch the raw
// primitives.
package password

import "golang.org/x/crypto/bcrypt"

// Hash produces a salted one-way hash of the given secret.
func Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether secret matches the stored hash.
func Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
