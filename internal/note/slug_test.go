package note

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug_AlwaysValid(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 500; i++ {
		s, err := GenerateSlug()
		require.NoError(t, err)

		require.Len(t, s, GeneratedSlugLen)
		require.True(t, ValidSlug(s), "generated slug %q is invalid", s)
		for _, c := range s {
			require.True(t, strings.ContainsRune(slugAlphabet, c), "unexpected char %q in %q", c, s)
		}
		seen[s] = struct{}{}
	}
	assert.Greater(t, len(seen), 490, "generator is producing duplicates")
}

func TestGenerateSlug_RequiredCharsNotPinned(t *testing.T) {
	// If the four seeded characters were never shuffled, position 0 would
	// always be uppercase.
	upperFirst := 0
	for i := 0; i < 200; i++ {
		s, err := GenerateSlug()
		require.NoError(t, err)
		if strings.ContainsRune(upperChars, rune(s[0])) {
			upperFirst++
		}
	}
	assert.Less(t, upperFirst, 200)
}

func TestValidSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"minimum length", "aB3!", true},
		{"maximum length", "aB3!aB3!aB3!aB3!aB3!", true},
		{"all specials", "Zz9!@$^*_-", true},
		{"too short", "aB3", false},
		{"too long", "aB3!aB3!aB3!aB3!aB3!x", false},
		{"no upper", "ab3!", false},
		{"no lower", "AB3!", false},
		{"no digit", "aBc!", false},
		{"no special", "aB3c", false},
		{"disallowed hash", "aB3!#", false},
		{"disallowed space", "aB3! ", false},
		{"disallowed slash", "aB3!/x", false},
		{"disallowed percent", "aB3%!", false},
		{"non ascii", "aB3!é", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidSlug(tt.in))
		})
	}
}

func TestValidSlug_RemovingAClassInvalidates(t *testing.T) {
	base := "Abcd12_-"
	require.True(t, ValidSlug(base))

	for _, class := range []string{upperChars, lowerChars, digitChars, specialChars} {
		var b strings.Builder
		for _, c := range base {
			if strings.ContainsRune(class, c) {
				continue
			}
			b.WriteRune(c)
		}
		assert.False(t, ValidSlug(b.String()), "%q should be invalid", b.String())
	}
}
