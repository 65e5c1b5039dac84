package util

import "strings"

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// NormalizeKey folds a server or character name into a cache key segment:
// trimmed, lowercased, inner whitespace collapsed to '_' and ':' removed.
func NormalizeKey(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return strings.ReplaceAll(strings.Join(fields, "_"), ":", "")
}
