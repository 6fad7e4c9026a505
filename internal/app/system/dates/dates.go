// Package dates handles the date strings that flow through expenses,
// attendance, and payments. Documents store dates as yyyy-mm-dd so
// string order matches chronological order and Mongo range queries on
// the field behave sensibly. Spreadsheet exports use dd-mm-yyyy for
// display.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// ISO is the storage layout (yyyy-mm-dd).
const ISO = "2006-01-02"

// Display is the layout used in generated workbooks (dd-mm-yyyy).
const Display = "02-01-2006"

// acceptedLayouts are tried in order when parsing client input. Clients
// and older spreadsheets have sent all of these at some point.
var acceptedLayouts = []string{
	ISO,
	"02-01-2006",
	"2/1/2006",
	"02/01/2006",
	"2-1-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Parse converts a client-supplied date string to ISO form. Empty input
// is an error; callers decide whether the field is optional.
func Parse(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("date is empty")
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ISO), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// ToDisplay renders an ISO date as dd-mm-yyyy. Non-ISO input is
// returned unchanged so a malformed stored value still exports.
func ToDisplay(iso string) string {
	t, err := time.Parse(ISO, iso)
	if err != nil {
		return iso
	}
	return t.Format(Display)
}

// Today returns the current date in ISO form.
func Today() string {
	return time.Now().UTC().Format(ISO)
}

// InRange reports whether iso falls within [from, to]. Empty bounds are
// open on that side. All three values must already be ISO strings; the
// comparison is lexicographic, which for ISO dates is chronological.
func InRange(iso, from, to string) bool {
	if from != "" && iso < from {
		return false
	}
	if to != "" && iso > to {
		return false
	}
	return true
}
