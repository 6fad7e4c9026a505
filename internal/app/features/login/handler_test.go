package login_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/crewhub/internal/app/features/login"
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"github.com/dalemusser/crewhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) (*login.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	if err := auth.InitSessionStore("test-session-key-0123456789", "crewhub-session", "", false, 1800, zap.NewNop()); err != nil {
		t.Fatalf("init session store: %v", err)
	}
	handler := login.NewHandler(db, nil, zap.NewNop())
	return handler, testutil.NewFixtures(t, db)
}

func createAccount(t *testing.T, fixtures *testutil.Fixtures, email, password string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Ravi Kumar", email, models.RoleMember)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	_, err = fixtures.DB().Collection("users").UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"password_hash": string(hash), "requires_login": true}})
	if err != nil {
		t.Fatalf("set password hash: %v", err)
	}
	return u
}

func postLogin(t *testing.T, handler *login.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/login", map[string]string{
		"email":    email,
		"password": password,
	})
	rec := httptest.NewRecorder()
	handler.HandleLogin(rec, req)
	return rec
}

func TestHandleLogin_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	createAccount(t, fixtures, "ravi@example.com", "right-password")

	rec := postLogin(t, handler, "ravi@example.com", "right-password")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Email != "ravi@example.com" || resp.Role != models.RoleMember {
		t.Errorf("unexpected response: %+v", resp)
	}

	if cookies := rec.Result().Cookies(); len(cookies) == 0 {
		t.Error("expected a session cookie")
	}
}

func TestHandleLogin_FailuresAreIndistinguishable(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	createAccount(t, fixtures, "ravi@example.com", "right-password")

	unknown := postLogin(t, handler, "nobody@example.com", "whatever")
	wrongPw := postLogin(t, handler, "ravi@example.com", "wrong-password")

	if unknown.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: expected %d, got %d", http.StatusUnauthorized, unknown.Code)
	}
	if wrongPw.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected %d, got %d", http.StatusUnauthorized, wrongPw.Code)
	}
	// Same status and same body, so callers cannot enumerate accounts.
	if unknown.Body.String() != wrongPw.Body.String() {
		t.Errorf("bodies differ: %q vs %q", unknown.Body.String(), wrongPw.Body.String())
	}
}

func TestHandleLogin_MissingFields(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postLogin(t, handler, "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
