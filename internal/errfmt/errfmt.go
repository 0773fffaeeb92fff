// Package errfmt bounds untrusted strings from the child process before
// they reach errors, events and logs.
package errfmt

import (
	"unicode"
	"unicode/utf8"
)

// MaxLen caps server error messages to prevent unbounded propagation.
const MaxLen = 4096

// MaxNameLen caps event and command names.
const MaxNameLen = 128

// MaxSnippetLen caps raw output lines quoted in log entries.
const MaxSnippetLen = 256

// truncateUTF8 caps s at max bytes, backtracking to a valid UTF-8 boundary.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	end := limit
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}

// Truncate caps a string at MaxLen bytes with UTF-8-safe truncation.
func Truncate(s string) string {
	return truncateUTF8(s, MaxLen)
}

// Snippet caps a raw line at MaxSnippetLen bytes for logging.
func Snippet(s string) string {
	return truncateUTF8(s, MaxSnippetLen)
}

// SanitizeName validates and truncates a wire name (event or command).
// Returns "" for strings containing control characters.
// Validate-then-truncate: control chars are rejected first, then
// rune-safe truncation ensures valid UTF-8 output.
func SanitizeName(raw string) string {
	for _, r := range raw {
		if unicode.IsControl(r) {
			return ""
		}
	}
	return truncateUTF8(raw, MaxNameLen)
}
