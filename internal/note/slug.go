package note

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const (
	SlugMinLen       = 4
	SlugMaxLen       = 20
	GeneratedSlugLen = 20

	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	digitChars   = "0123456789"
	specialChars = "!@$^*_-"
	slugAlphabet = upperChars + lowerChars + digitChars + specialChars
)

var slugRe = regexp.MustCompile(`^[A-Za-z0-9!@$^*_\-]+$`)

// GenerateSlug returns a random slug that always passes ValidSlug.
// It does not check uniqueness.
func GenerateSlug() (string, error) {
	out := make([]byte, 0, GeneratedSlugLen)
	for _, class := range []string{upperChars, lowerChars, digitChars, specialChars} {
		c, err := pick(class)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < GeneratedSlugLen {
		c, err := pick(slugAlphabet)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	// Fisher-Yates so the seeded characters land anywhere.
	for i := len(out) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

// ValidSlug reports whether s is 4..20 characters from the slug alphabet and
// contains an upper, a lower, a digit and a special character.
func ValidSlug(s string) bool {
	if len(s) < SlugMinLen || len(s) > SlugMaxLen {
		return false
	}
	if !slugRe.MatchString(s) {
		return false
	}
	return strings.ContainsAny(s, upperChars) &&
		strings.ContainsAny(s, lowerChars) &&
		strings.ContainsAny(s, digitChars) &&
		strings.ContainsAny(s, specialChars)
}

func pick(set string) (byte, error) {
	i, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
