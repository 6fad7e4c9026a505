// Package normalize provides canonical forms for user-supplied fields.
//
// Stores index and compare the normalized forms; handlers normalize on
// the way in so that "ASHA rao" and "Asha Rao" never become two people.
package normalize

import (
	"strings"
	"unicode"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims whitespace but preserves the caller's casing. Display
// names keep whatever the admin typed; match on the folded _ci field.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status lowercases and trims a status value ("pending", "approved", ...).
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Category trims a member category and collapses inner runs of spaces,
// so "Head  Office" and "Head Office" compare equal.
func Category(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Team trims a team name and collapses inner whitespace.
func Team(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Title capitalizes each word, lowercasing the rest. Report grouping
// uses it so "asha rao" and "ASHA RAO" land in one bucket.
func Title(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
