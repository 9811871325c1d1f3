package utils

import "unicode/utf8"

// Truncate returns s cut to at most maxLen bytes, never splitting a UTF-8
// rune: the cut backs up to the nearest rune boundary. No ellipsis is
// appended: truncated strings feed the embedding model, not a UI.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
