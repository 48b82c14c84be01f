package utils

import "strings"

// MaskToken renders a secret for display. Tokens longer than 12 characters
// keep their first 8 and last 4 characters; anything shorter is fully hidden.
func MaskToken(token string) string {
	r := []rune(token)
	if len(r) > 12 {
		return string(r[:8]) + "..." + string(r[len(r)-4:])
	}
	return "***"
}

// ShellQuote wraps a single shell argument in single quotes
func ShellQuote(arg string) string {
	return "'" + strings.ReplaceAll(arg, "'", "'\\''") + "'"
}

// PowerShellQuote wraps a value in a PowerShell single-quoted string literal
func PowerShellQuote(arg string) string {
	return "'" + strings.ReplaceAll(arg, "'", "''") + "'"
}
