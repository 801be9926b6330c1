package util

import "fmt"

// DefaultLogMaxLen is the default maximum length for truncated log output (1KB)
const DefaultLogMaxLen = 1024

// ErrorExcerptLen caps how much of a remote response body is echoed into
// error messages shown to the user.
const ErrorExcerptLen = 240

// TruncateLog truncates long strings for verbose logging.
// This helps control log file growth while maintaining diagnostics capability.
func TruncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}

// TruncateBytes is a convenience wrapper for TruncateLog that accepts []byte
// and uses DefaultLogMaxLen. This simplifies common logging patterns.
func TruncateBytes(b []byte) string {
	return TruncateLog(string(b), DefaultLogMaxLen)
}

// TruncateChars keeps at most maxChars runes of s without any suffix.
// Used for error text, where the excerpt must stay valid UTF-8.
func TruncateChars(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == maxChars {
			return s[:i]
		}
		count++
	}
	return s
}

// BodyExcerpt formats a remote response body for inclusion in an error.
func BodyExcerpt(body []byte) string {
	return TruncateChars(string(body), ErrorExcerptLen)
}
