package note

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	PasswordMaxLen = 8
	passwordCost   = 10
)

// HashPassword validates a note password and returns its bcrypt hash.
// The eight character cap is a product rule, not a security recommendation.
func HashPassword(plain string) (string, error) {
	ve := &ValidationError{}
	switch n := utf8.RuneCountInString(plain); {
	case n == 0:
		ve.add("Password is required")
	case n > PasswordMaxLen:
		ve.add(fmt.Sprintf("Password must be at most %d characters", PasswordMaxLen))
	}
	if err := ve.err(); err != nil {
		return "", err
	}

	b, err := bcrypt.GenerateFromPassword([]byte(plain), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func ComparePassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
