package util

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeString trims whitespace and removes control characters from s.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeFilename reduces a user-supplied filename to its base name and
// replaces characters outside [A-Za-z0-9._-] with underscores. Path
// separators never survive, so the result is safe to join under an upload
// directory.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	return strings.Trim(base, "._")
}
