package registrations_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/crewhub/internal/app/features/registrations"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"github.com/dalemusser/crewhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) (*registrations.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	handler := registrations.NewHandler(db, nil, nil, zap.NewNop())
	return handler, testutil.NewFixtures(t, db)
}

func multipartForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write form field %q: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHandleSubmit_SiteRegistration(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	body, contentType := multipartForm(t, map[string]string{
		"person_name": "Ravi Kumar",
		"category":    models.CategorySite,
		"phone":       "9876543210",
	})
	req := httptest.NewRequest("POST", "/registrations", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var m models.Member
	err := fixtures.DB().Collection("members").FindOne(ctx, bson.M{"person_name": "Ravi Kumar"}).Decode(&m)
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if m.Status != models.StatusPending {
		t.Errorf("Status: got %q, want %q", m.Status, models.StatusPending)
	}
	if m.EmployeeID != "" {
		t.Errorf("site registration should not get an employee id, got %q", m.EmployeeID)
	}
}

func TestHandleSubmit_HeadOffice_AssignsEmployeeID(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	body, contentType := multipartForm(t, map[string]string{
		"person_name": "Asha Rao",
		"category":    models.CategoryHeadOffice,
		"email":       "asha@example.com",
		"password":    "s3cret-enough",
	})
	req := httptest.NewRequest("POST", "/registrations", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var m models.Member
	err := fixtures.DB().Collection("members").FindOne(ctx, bson.M{"person_name": "Asha Rao"}).Decode(&m)
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if !strings.HasPrefix(m.EmployeeID, "EMP-") {
		t.Errorf("expected EMP- employee id, got %q", m.EmployeeID)
	}
	if m.PasswordHash == "" {
		t.Error("expected captured password hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte("s3cret-enough")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestHandleSubmit_HeadOffice_RequiresEmail(t *testing.T) {
	handler, _ := newTestHandler(t)

	body, contentType := multipartForm(t, map[string]string{
		"person_name": "No Email",
		"category":    models.CategoryHeadOffice,
		"password":    "irrelevant",
	})
	req := httptest.NewRequest("POST", "/registrations", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandleDecision_ApproveHeadOffice_ProvisionsAccount(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, _ := bcrypt.GenerateFromPassword([]byte("pw-for-asha"), bcrypt.MinCost)
	reg := fixtures.CreatePendingRegistration(ctx, "Asha Rao", models.CategoryHeadOffice, "asha@example.com", string(hash))

	req := testutil.NewJSONRequest(t, "POST", "/registrations/"+reg.ID.Hex()+"/decision",
		map[string]string{"action": "approve", "remark": "all documents verified"})
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", reg.ID.Hex())

	rec := httptest.NewRecorder()
	handler.HandleDecision(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		Member            *models.Member `json:"member"`
		ProvisioningError string         `json:"provisioning_error"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.ProvisioningError != "" {
		t.Fatalf("unexpected provisioning error: %s", resp.ProvisioningError)
	}
	if resp.Member.Status != models.StatusApproved {
		t.Errorf("Status: got %q, want %q", resp.Member.Status, models.StatusApproved)
	}

	var user models.User
	err := fixtures.DB().Collection("users").FindOne(ctx, bson.M{"email": "asha@example.com"}).Decode(&user)
	if err != nil {
		t.Fatalf("provisioned user not found: %v", err)
	}
	if user.Role != models.RoleMember {
		t.Errorf("Role: got %q, want %q", user.Role, models.RoleMember)
	}
	if !user.RequiresLogin {
		t.Error("provisioned account should require login")
	}

	// The captured hash moves to the account and is cleared from the member.
	var m models.Member
	if err := fixtures.DB().Collection("members").FindOne(ctx, bson.M{"_id": reg.ID}).Decode(&m); err != nil {
		t.Fatalf("member reload failed: %v", err)
	}
	if m.PasswordHash != "" {
		t.Error("member password hash should be cleared after provisioning")
	}
}

func TestHandleDecision_DuplicateEmail_ReportsProvisioningError(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "Existing User", "asha@example.com", models.RoleMember)
	reg := fixtures.CreatePendingRegistration(ctx, "Asha Rao", models.CategoryHeadOffice, "asha@example.com", "some-hash")

	req := testutil.NewJSONRequest(t, "POST", "/registrations/"+reg.ID.Hex()+"/decision",
		map[string]string{"action": "approve"})
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", reg.ID.Hex())

	rec := httptest.NewRecorder()
	handler.HandleDecision(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		Member            *models.Member `json:"member"`
		ProvisioningError string         `json:"provisioning_error"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.ProvisioningError == "" {
		t.Error("expected a provisioning error for the duplicate email")
	}
	// The approval stands even though the account could not be created.
	if resp.Member.Status != models.StatusApproved {
		t.Errorf("Status: got %q, want %q", resp.Member.Status, models.StatusApproved)
	}
}

func TestHandleDecision_AlreadyDecided_Conflict(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reg := fixtures.CreatePendingRegistration(ctx, "Ravi Kumar", models.CategorySite, "", "")

	decide := func() *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, "POST", "/registrations/"+reg.ID.Hex()+"/decision",
			map[string]string{"action": "reject", "remark": "incomplete"})
		req = testutil.WithUser(req, testutil.AdminUser())
		req = testutil.WithChiURLParam(req, "id", reg.ID.Hex())
		rec := httptest.NewRecorder()
		handler.HandleDecision(rec, req)
		return rec
	}

	if rec := decide(); rec.Code != http.StatusOK {
		t.Fatalf("first decision: expected %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if rec := decide(); rec.Code != http.StatusConflict {
		t.Errorf("second decision: expected %d, got %d", http.StatusConflict, rec.Code)
	}
}
