// Package text holds small string helpers shared across packages.
package text

import "unicode/utf8"

// Truncate caps s at max bytes and appends an ellipsis marker. The cut
// backs up to a rune boundary so multi-byte text is never split mid-rune.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
