package message

import (
	"strings"
	"unicode/utf8"
)

// CleanText decodes body bytes into text safe for pattern matching. Invalid
// byte sequences are replaced, never surfaced as errors.
func CleanText(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	s := string(b)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	return s
}

// CleanHeader normalizes a decoded header value: invalid bytes replaced,
// folding whitespace collapsed, surrounding space trimmed.
func CleanHeader(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
