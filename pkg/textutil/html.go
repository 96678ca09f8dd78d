package textutil

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// CleanHTML removes HTML tags and decodes the entities that show up in
// airline confirmation bodies.
func CleanHTML(text string) string {
	cleaned := tagPattern.ReplaceAllString(text, " ")

	cleaned = strings.ReplaceAll(cleaned, "&nbsp;", " ")
	cleaned = strings.ReplaceAll(cleaned, "&amp;", "&")
	cleaned = strings.ReplaceAll(cleaned, "&lt;", "<")
	cleaned = strings.ReplaceAll(cleaned, "&gt;", ">")
	cleaned = strings.ReplaceAll(cleaned, "&#39;", "'")
	cleaned = strings.ReplaceAll(cleaned, "&quot;", "\"")

	return strings.TrimSpace(cleaned)
}

// NormalizeLines unifies line endings so anchored patterns see one body shape
// regardless of the sending mail server.
func NormalizeLines(body string) string {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	return strings.ReplaceAll(normalized, "\r", "\n")
}
