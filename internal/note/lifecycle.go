package note

import (
	"strings"
	"time"
)

const (
	DefaultLogoText = "NoteSpace"
	DefaultTTL      = 5 * time.Minute
)

// IsEmpty reports whether the note still holds nothing but defaults.
func IsEmpty(title, content, logoText string) bool {
	return strings.TrimSpace(title) == "" &&
		strings.TrimSpace(content) == "" &&
		logoText == DefaultLogoText
}

func (n *Note) IsEmpty() bool {
	return IsEmpty(n.Title, n.Content, n.LogoText)
}

// IsExpired mirrors the reaper predicate on current field values. Callers use
// it to disable editing before the store deletes the note; it is never used
// for correctness.
func IsExpired(title, content, logoText string, updatedAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(updatedAt) > ttl && IsEmpty(title, content, logoText)
}

func (n *Note) IsExpired(now time.Time, ttl time.Duration) bool {
	return IsExpired(n.Title, n.Content, n.LogoText, n.UpdatedAt, now, ttl)
}
