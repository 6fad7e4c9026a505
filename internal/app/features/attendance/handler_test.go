package attendance_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/crewhub/internal/app/features/attendance"
	"github.com/dalemusser/crewhub/internal/app/system/dates"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"github.com/dalemusser/crewhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*attendance.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	handler := attendance.NewHandler(db, nil, zap.NewNop())
	return handler, testutil.NewFixtures(t, db)
}

func markRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/attendance", body)
	return testutil.WithUser(req, testutil.MemberUser())
}

func TestHandleMark_DefaultsPersonAndDate(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.HandleMark(rec, markRequest(t, map[string]any{
		"site_name": "Riverside",
		"time_in":   "09:05",
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var got models.Attendance
	testutil.DecodeJSON(t, rec, &got)
	if got.PersonName != "Test Member" {
		t.Errorf("PersonName: got %q, want %q", got.PersonName, "Test Member")
	}
	if got.Date != dates.Today() {
		t.Errorf("Date: got %q, want today (%q)", got.Date, dates.Today())
	}
	if got.Status != "pending" {
		t.Errorf("Status: got %q, want %q", got.Status, "pending")
	}
}

func TestHandleMark_SecondPunchSameDayConflicts(t *testing.T) {
	handler, _ := newTestHandler(t)

	body := map[string]any{
		"person_name": "Ravi Kumar",
		"site_name":   "Riverside",
		"date":        "2025-03-10",
		"time_in":     "09:00",
	}

	rec := httptest.NewRecorder()
	handler.HandleMark(rec, markRequest(t, body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first punch: expected %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.HandleMark(rec, markRequest(t, body))
	if rec.Code != http.StatusConflict {
		t.Errorf("second punch: expected %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestHandleMark_RequiresSite(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.HandleMark(rec, markRequest(t, map[string]any{"time_in": "09:00"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandleDecisions(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateAttendance(ctx, "Ravi Kumar", "Riverside", "2025-03-10", "pending")
	b := fixtures.CreateAttendance(ctx, "Asha Rao", "Riverside", "2025-03-10", "pending")

	req := testutil.NewJSONRequest(t, "POST", "/attendance/decisions", map[string]any{
		"ids":    []string{a.ID.Hex(), b.ID.Hex()},
		"action": "approve",
	})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	handler.HandleDecisions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Succeeded != 2 || resp.Failed != 0 {
		t.Errorf("expected 2 succeeded / 0 failed, got %d / %d", resp.Succeeded, resp.Failed)
	}
}
