package catalog

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Canonical trims, NFC-composes and collapses internal whitespace.
// Catalog entries are stored in this form.
func Canonical(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Fold is the comparison key for case-insensitive substring search.
// It composes before lowercasing so "é" typed as e+U+0301 still matches a
// precomposed catalog entry. Whitespace is kept as typed.
func Fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
