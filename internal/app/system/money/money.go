// Package money parses and formats the amount strings carried on
// expenses and payments. Amounts are stored as the string the client
// sent (after validation) and summed as float64 for report totals,
// which is accurate enough for two-decimal currency at the volumes
// involved.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse validates an amount string and returns its numeric value.
// Commas are tolerated ("1,250.50"); negative amounts are rejected.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("amount must not be negative")
	}
	return v, nil
}

// Format renders a value with two decimal places for storage and
// export ("1250.50").
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Sum parses and totals a slice of amount strings. Unparseable entries
// are skipped; a stored amount is validated at write time, so a bad
// one here is legacy data and should not sink a whole report.
func Sum(amounts []string) float64 {
	var total float64
	for _, a := range amounts {
		if v, err := Parse(a); err == nil {
			total += v
		}
	}
	return total
}
