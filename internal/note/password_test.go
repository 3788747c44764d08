package note

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	for _, p := range []string{"a", "ab12@XY", "12345678", "пароль"} {
		hash, err := HashPassword(p)
		require.NoError(t, err, p)

		assert.NotEqual(t, p, hash)
		assert.True(t, ComparePassword(hash, p))
		assert.False(t, ComparePassword(hash, p+"x"))
		assert.False(t, ComparePassword(hash, ""))

		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, passwordCost, cost)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_LengthLimits(t *testing.T) {
	for _, p := range []string{"", strings.Repeat("x", PasswordMaxLen+1)} {
		_, err := HashPassword(p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation), "want validation error for %q, got %v", p, err)
	}
}
