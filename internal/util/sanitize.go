package util

import (
	"strings"
	"unicode"
)

// SanitizeFilename normalizes an uploaded file's name before it is embedded in
// a storage key. Control and invisible characters are stripped, path and shell
// noise is replaced with underscores, and the result is truncated to 255 runes.
// A name that sanitizes to nothing becomes "file".
func SanitizeFilename(name string) string {
	trimmed := strings.TrimSpace(name)

	builder := strings.Builder{}
	builder.Grow(len(trimmed))

	for _, char := range trimmed {
		if unicode.IsControl(char) || unicode.Is(unicode.Cf, char) {
			continue
		}
		if isUnsafeKeyChar(char) {
			builder.WriteRune('_')
			continue
		}
		builder.WriteRune(char)
	}

	cleaned := strings.TrimSpace(builder.String())
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "file"
	}

	// Truncate by runes (not bytes) to avoid splitting multi-byte characters.
	runes := []rune(cleaned)
	if len(runes) > 255 {
		runes = runes[:255]
	}

	return string(runes)
}

func isUnsafeKeyChar(r rune) bool {
	switch r {
	case '<', '>', ':', '"', '/', '\\', '|', '?', '*', '#', '%', '&', '{', '}', '$', '!', '\'', '@', '+', '`', '=':
		return true
	}
	return false
}
