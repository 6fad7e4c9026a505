// internal/domain/assignment/assignment.go

// Package assignment is the single policy module for site assignment
// history. Every mutation of a member's history goes through Assign or
// Unassign, which maintain the invariant that at most one interval per
// site is open (to == nil) at any time.
package assignment

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/crewhub/internal/domain/models"
)

// ErrStillAssigned is returned when Assign would need to close an open
// interval but the caller did not allow auto-unassign.
var ErrStillAssigned = errors.New("member has an open assignment; enable auto-unassign to close it")

// Change summarizes what a mutation did, for audit logging.
type Change struct {
	Opened []string
	Closed []string
}

// Assign applies set-difference semantics to the history: open intervals
// whose site is not in newSites are closed (dated today), and a new open
// interval is appended for each site in newSites that has none.
//
// If autoUnassign is false and an open interval would have to be closed,
// Assign refuses with ErrStillAssigned instead of leaving two open
// intervals behind. Assigning an already-open site is a no-op for that
// site, so Assign is idempotent.
func Assign(history []models.SiteInterval, newSites []string, assignedBy string, today time.Time, autoUnassign bool) ([]models.SiteInterval, Change, error) {
	var change Change

	want := make(map[string]bool, len(newSites))
	for _, s := range newSites {
		want[s] = true
	}

	open := openSites(history)

	// Close first so a re-open of the same site on the same day cannot
	// produce two open intervals.
	day := today.Truncate(24 * time.Hour)
	out := make([]models.SiteInterval, len(history))
	copy(out, history)
	for i := range out {
		if !out[i].Open() || want[out[i].Site] {
			continue
		}
		if !autoUnassign {
			return nil, Change{}, fmt.Errorf("%w: %s", ErrStillAssigned, out[i].Site)
		}
		to := day
		out[i].To = &to
		change.Closed = append(change.Closed, out[i].Site)
	}

	for _, s := range newSites {
		if open[s] {
			continue
		}
		out = append(out, models.SiteInterval{
			Site:       s,
			From:       day,
			To:         nil,
			AssignedBy: assignedBy,
		})
		change.Opened = append(change.Opened, s)
	}

	if err := Validate(out); err != nil {
		return nil, Change{}, err
	}
	return out, change, nil
}

// Unassign closes every open interval, dated today. A history with no
// open intervals (including an empty one) is returned unchanged.
func Unassign(history []models.SiteInterval, today time.Time) ([]models.SiteInterval, Change) {
	var change Change
	day := today.Truncate(24 * time.Hour)
	out := make([]models.SiteInterval, len(history))
	copy(out, history)
	for i := range out {
		if !out[i].Open() {
			continue
		}
		to := day
		out[i].To = &to
		change.Closed = append(change.Closed, out[i].Site)
	}
	return out, change
}

// Current returns the sites with an open interval, in history order.
func Current(history []models.SiteInterval) []string {
	var sites []string
	for _, iv := range history {
		if iv.Open() {
			sites = append(sites, iv.Site)
		}
	}
	return sites
}

// Validate checks the one-open-interval-per-site invariant.
func Validate(history []models.SiteInterval) error {
	open := make(map[string]bool)
	for _, iv := range history {
		if !iv.Open() {
			continue
		}
		if open[iv.Site] {
			return fmt.Errorf("site %q has more than one open interval", iv.Site)
		}
		open[iv.Site] = true
	}
	return nil
}

func openSites(history []models.SiteInterval) map[string]bool {
	open := make(map[string]bool)
	for _, iv := range history {
		if iv.Open() {
			open[iv.Site] = true
		}
	}
	return open
}
