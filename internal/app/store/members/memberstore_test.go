package memberstore_test

import (
	"errors"
	"testing"

	memberstore "github.com/dalemusser/crewhub/internal/app/store/members"
	"github.com/dalemusser/crewhub/internal/domain/assignment"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"github.com/dalemusser/crewhub/internal/testutil"
)

func TestDecide_ApproveThenConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	reg := fixtures.CreatePendingRegistration(ctx, "Ravi Kumar", models.CategorySite, "", "")

	m, err := store.Decide(ctx, reg.ID, true, "Test Admin", "looks good")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if m.Status != models.StatusApproved {
		t.Errorf("Status: got %q, want %q", m.Status, models.StatusApproved)
	}
	if m.DecidedBy != "Test Admin" {
		t.Errorf("DecidedBy: got %q, want %q", m.DecidedBy, "Test Admin")
	}
	if m.DecidedAt == nil {
		t.Error("DecidedAt should be set")
	}

	_, err = store.Decide(ctx, reg.ID, false, "Test Admin", "")
	if !errors.Is(err, memberstore.ErrAlreadyDecided) {
		t.Errorf("expected ErrAlreadyDecided, got %v", err)
	}
}

func TestAssign_RequiresApproved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	reg := fixtures.CreatePendingRegistration(ctx, "Ravi Kumar", models.CategorySite, "", "")

	_, _, err := store.Assign(ctx, reg.ID, "Riverside", nil, "Test Admin", false)
	if !errors.Is(err, memberstore.ErrNotApproved) {
		t.Errorf("expected ErrNotApproved, got %v", err)
	}
}

func TestAssign_OpensIntervalAndCollapsesSites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	m := fixtures.CreateMember(ctx, "Ravi Kumar", models.CategorySite, models.StatusApproved)

	updated, change, err := store.Assign(ctx, m.ID, "Riverside", []string{"Night Shift"}, "Test Admin", false)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if len(updated.Sites) != 1 || updated.Sites[0] != "Riverside" {
		t.Errorf("Sites: got %v, want [Riverside]", updated.Sites)
	}
	if len(updated.SiteHistory) != 1 || !updated.SiteHistory[0].Open() {
		t.Errorf("expected one open interval, got %v", updated.SiteHistory)
	}
	if len(change.Opened) != 1 {
		t.Errorf("expected one opened site in change, got %v", change)
	}
}

func TestAssign_StillAssignedWithoutAutoUnassign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	m := fixtures.CreateMember(ctx, "Ravi Kumar", models.CategorySite, models.StatusApproved)

	if _, _, err := store.Assign(ctx, m.ID, "Riverside", nil, "Test Admin", false); err != nil {
		t.Fatalf("first Assign failed: %v", err)
	}

	_, _, err := store.Assign(ctx, m.ID, "Hilltop", nil, "Test Admin", false)
	if !errors.Is(err, assignment.ErrStillAssigned) {
		t.Errorf("expected ErrStillAssigned, got %v", err)
	}

	// With auto_unassign the old interval closes and the new one opens.
	updated, change, err := store.Assign(ctx, m.ID, "Hilltop", nil, "Test Admin", true)
	if err != nil {
		t.Fatalf("Assign with auto-unassign failed: %v", err)
	}
	if len(updated.SiteHistory) != 2 {
		t.Fatalf("expected 2 intervals, got %v", updated.SiteHistory)
	}
	if updated.SiteHistory[0].Open() {
		t.Error("old interval should be closed")
	}
	if !updated.SiteHistory[1].Open() || updated.SiteHistory[1].Site != "Hilltop" {
		t.Errorf("expected open Hilltop interval, got %v", updated.SiteHistory[1])
	}
	if len(change.Closed) != 1 {
		t.Errorf("expected one closed site in change, got %v", change)
	}
}

func TestRelieve_ClosesIntervals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	m := fixtures.CreateMember(ctx, "Ravi Kumar", models.CategorySite, models.StatusApproved)

	if _, _, err := store.Assign(ctx, m.ID, "Riverside", nil, "Test Admin", false); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	relieved, change, err := store.Relieve(ctx, m.ID)
	if err != nil {
		t.Fatalf("Relieve failed: %v", err)
	}
	if relieved.Status != models.StatusRelieved {
		t.Errorf("Status: got %q, want %q", relieved.Status, models.StatusRelieved)
	}
	if relieved.RelievedAt == nil {
		t.Error("RelievedAt should be set")
	}
	for _, iv := range relieved.SiteHistory {
		if iv.Open() {
			t.Errorf("interval for %q should be closed", iv.Site)
		}
	}
	if len(relieved.Sites) != 0 {
		t.Errorf("Sites should be empty, got %v", relieved.Sites)
	}
	if len(change.Closed) != 1 || change.Closed[0] != "Riverside" {
		t.Errorf("Closed: got %v, want [Riverside]", change.Closed)
	}
}

func TestUnassign_ClosesIntervalsAndReportsChange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	m := fixtures.CreateMember(ctx, "Ravi Kumar", models.CategorySite, models.StatusApproved)

	if _, _, err := store.Assign(ctx, m.ID, "Riverside", nil, "Test Admin", false); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	updated, change, err := store.Unassign(ctx, m.ID)
	if err != nil {
		t.Fatalf("Unassign failed: %v", err)
	}
	if len(updated.Sites) != 0 {
		t.Errorf("Sites should be empty, got %v", updated.Sites)
	}
	for _, iv := range updated.SiteHistory {
		if iv.Open() {
			t.Errorf("interval for %q should be closed", iv.Site)
		}
	}
	if len(change.Closed) != 1 || change.Closed[0] != "Riverside" {
		t.Errorf("Closed: got %v, want [Riverside]", change.Closed)
	}

	// A member with nothing open comes back unchanged.
	_, change, err = store.Unassign(ctx, m.ID)
	if err != nil {
		t.Fatalf("second Unassign failed: %v", err)
	}
	if len(change.Closed) != 0 {
		t.Errorf("Closed should be empty on a repeat unassign, got %v", change.Closed)
	}
}

func TestList_FiltersByNameContains(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	fixtures.CreateMember(ctx, "Ravi Kumar", models.CategorySite, models.StatusApproved)
	fixtures.CreateMember(ctx, "Asha Rao", models.CategoryHeadOffice, models.StatusApproved)

	got, err := store.List(ctx, memberstore.ListFilter{NameContains: "ravi"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].PersonName != "Ravi Kumar" {
		t.Errorf("unexpected result: %v", got)
	}
}
