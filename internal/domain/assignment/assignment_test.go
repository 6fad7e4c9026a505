package assignment

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/crewhub/internal/domain/models"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func openInterval(site string, from time.Time) models.SiteInterval {
	return models.SiteInterval{Site: site, From: from, AssignedBy: "admin"}
}

func closedInterval(site string, from, to time.Time) models.SiteInterval {
	return models.SiteInterval{Site: site, From: from, To: &to, AssignedBy: "admin"}
}

func TestAssign_FirstSite(t *testing.T) {
	out, change, err := Assign(nil, []string{"Riverside"}, "admin", day, true)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if len(out) != 1 || !out[0].Open() || out[0].Site != "Riverside" {
		t.Fatalf("unexpected history: %+v", out)
	}
	if len(change.Opened) != 1 || change.Opened[0] != "Riverside" {
		t.Errorf("change.Opened = %v, want [Riverside]", change.Opened)
	}
	if len(change.Closed) != 0 {
		t.Errorf("change.Closed = %v, want empty", change.Closed)
	}
}

func TestAssign_ChangedSiteClosesPrevious(t *testing.T) {
	prev := day.AddDate(0, -1, 0)
	history := []models.SiteInterval{openInterval("Riverside", prev)}

	out, change, err := Assign(history, []string{"Hilltop"}, "admin", day, true)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if out[0].Open() {
		t.Error("previous interval should be closed")
	}
	if out[0].To == nil || !out[0].To.Equal(day) {
		t.Errorf("previous interval To = %v, want %v", out[0].To, day)
	}
	if got := Current(out); len(got) != 1 || got[0] != "Hilltop" {
		t.Errorf("Current = %v, want [Hilltop]", got)
	}
	if len(change.Closed) != 1 || change.Closed[0] != "Riverside" {
		t.Errorf("change.Closed = %v, want [Riverside]", change.Closed)
	}
}

func TestAssign_SameSiteIdempotent(t *testing.T) {
	history := []models.SiteInterval{openInterval("Riverside", day.AddDate(0, -1, 0))}

	out, change, err := Assign(history, []string{"Riverside"}, "admin", day, true)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if len(out) != 1 || !out[0].Open() {
		t.Fatalf("unexpected history: %+v", out)
	}
	if len(change.Opened) != 0 || len(change.Closed) != 0 {
		t.Errorf("expected no change, got %+v", change)
	}
}

func TestAssign_RefusesWithoutAutoUnassign(t *testing.T) {
	history := []models.SiteInterval{openInterval("Riverside", day.AddDate(0, -1, 0))}

	_, _, err := Assign(history, []string{"Hilltop"}, "admin", day, false)
	if !errors.Is(err, ErrStillAssigned) {
		t.Fatalf("err = %v, want ErrStillAssigned", err)
	}
}

func TestAssign_DoesNotMutateInput(t *testing.T) {
	history := []models.SiteInterval{openInterval("Riverside", day.AddDate(0, -1, 0))}

	_, _, err := Assign(history, []string{"Hilltop"}, "admin", day, true)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if !history[0].Open() {
		t.Error("input history was mutated")
	}
}

func TestAssign_SetDifference(t *testing.T) {
	prev := day.AddDate(0, -2, 0)
	history := []models.SiteInterval{
		openInterval("Riverside", prev),
		openInterval("Hilltop", prev),
		closedInterval("Quarry", prev, day.AddDate(0, -1, 0)),
	}

	out, change, err := Assign(history, []string{"Hilltop", "Quarry"}, "admin", day, true)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if len(change.Closed) != 1 || change.Closed[0] != "Riverside" {
		t.Errorf("change.Closed = %v, want [Riverside]", change.Closed)
	}
	if len(change.Opened) != 1 || change.Opened[0] != "Quarry" {
		t.Errorf("change.Opened = %v, want [Quarry]", change.Opened)
	}
	if err := Validate(out); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestUnassign_ClosesAllOpen(t *testing.T) {
	prev := day.AddDate(0, -1, 0)
	history := []models.SiteInterval{openInterval("Riverside", prev)}

	out, change := Unassign(history, day)
	if len(change.Closed) != 1 {
		t.Fatalf("change.Closed = %v, want one site", change.Closed)
	}
	if got := Current(out); len(got) != 0 {
		t.Errorf("Current = %v, want empty", got)
	}
}

func TestUnassign_EmptyHistory(t *testing.T) {
	out, change := Unassign(nil, day)
	if len(out) != 0 || len(change.Closed) != 0 {
		t.Errorf("expected no-op, got out=%v change=%+v", out, change)
	}
}

func TestValidate_DetectsDoubleOpen(t *testing.T) {
	prev := day.AddDate(0, -1, 0)
	history := []models.SiteInterval{
		openInterval("Riverside", prev),
		openInterval("Riverside", day),
	}
	if err := Validate(history); err == nil {
		t.Error("expected error for two open intervals on one site")
	}
}
