// Package password wraps bcrypt-class hashing for the Identity component
// (§2 "Identity"). Borrowed from the wider example pack rather than the
// teacher repository, which authenticates exclusively via upstream JWTs
// and has no password surface of its own.
package password

import "golang.org/x/crypto/bcrypt"

const bcryptCost = bcrypt.DefaultCost

// MinLength is the password policy floor (§4.4): at least 8 characters
// after trimming whitespace.
const MinLength = 8

func Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. An empty hash (legacy user,
// §3 User "password_hash optional; empty means legacy") never matches.
func Verify(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IsHashed reports whether s already looks like a bcrypt hash, the same
// "$2" prefix check the scenario in §8 S3 uses to assert upgrade.
func IsHashed(s string) bool {
	return len(s) >= 2 && s[0] == '$' && s[1] == '2'
}
