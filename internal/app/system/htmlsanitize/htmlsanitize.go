// Package htmlsanitize strips dangerous HTML from free-text fields
// before they are stored. Remarks and decision notes are later shown
// verbatim to members, so they go through the UGC policy on the way in.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps safe formatting markup and removes scripts, event
// handlers, and javascript: URLs.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// Text strips all markup, leaving plain text. Used for fields that
// should never contain HTML at all (names, sites, categories).
func Text(s string) string {
	return strict.Sanitize(s)
}
