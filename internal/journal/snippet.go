package journal

import "strings"

// SnippetLimit is the display length cap for flashback previews, in runes.
const SnippetLimit = 120

// Snippet joins a version's non-empty content fields into a single preview
// string, truncated to SnippetLimit runes with a trailing ellipsis. Returns
// "" for a version with no content.
func Snippet(v Version) string {
	parts := make([]string, 0, 3)
	for _, f := range []*string{v.Person, v.Grace, v.Gratitude} {
		if f != nil && strings.TrimSpace(*f) != "" {
			parts = append(parts, strings.TrimSpace(*f))
		}
	}
	combined := strings.Join(parts, " ")

	runes := []rune(combined)
	if len(runes) <= SnippetLimit {
		return combined
	}
	return string(runes[:SnippetLimit-3]) + "..."
}

// HasContent reports whether any content field is non-empty after trimming.
func HasContent(v Version) bool {
	for _, f := range []*string{v.Person, v.Grace, v.Gratitude} {
		if f != nil && strings.TrimSpace(*f) != "" {
			return true
		}
	}
	return false
}
