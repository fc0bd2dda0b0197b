package identity

import "strings"

// NormalizeUsername performs case-insensitive canonicalization.
// Lookups and the uniqueness constraint both use the normalized form.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
