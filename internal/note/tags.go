package note

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

const (
	MaxTags   = 20
	MaxTagLen = 32
)

// A tag starts the content or follows a non-word character, so "a#b" and
// HTML entities like "&#39;" are not tags. Longer runs than MaxTagLen are
// ignored rather than truncated.
var hashtagRe = regexp.MustCompile(fmt.Sprintf(`(?:^|[^\w&#])#(\w{1,%d})\b`, MaxTagLen))

// ExtractTags returns the distinct lowercased #hashtags in content, in order
// of first appearance, at most MaxTags of them.
func ExtractTags(content string) []string {
	var tags []string
	for _, m := range hashtagRe.FindAllStringSubmatch(content, -1) {
		tag := strings.ToLower(m[1])
		if slices.Contains(tags, tag) {
			continue
		}
		if tags = append(tags, tag); len(tags) == MaxTags {
			break
		}
	}
	return tags
}

// NormalizeTag turns user input such as " #Work " into the stored form.
func NormalizeTag(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "#"))
}
