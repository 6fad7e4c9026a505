package sites_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/crewhub/internal/app/features/sites"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"github.com/dalemusser/crewhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*sites.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	handler := sites.NewHandler(db, nil, zap.NewNop())
	return handler, testutil.NewFixtures(t, db)
}

func TestHandleCreate(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/sites", map[string]string{"name": "Riverside"})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var site models.Site
	testutil.DecodeJSON(t, rec, &site)
	if site.Name != "Riverside" {
		t.Errorf("Name: got %q, want %q", site.Name, "Riverside")
	}
}

func TestHandleCreate_DuplicateNameCaseInsensitive(t *testing.T) {
	handler, _ := newTestHandler(t)

	create := func(name string) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, "POST", "/sites", map[string]string{"name": name})
		req = testutil.WithUser(req, testutil.AdminUser())
		rec := httptest.NewRecorder()
		handler.HandleCreate(rec, req)
		return rec
	}

	if rec := create("Riverside"); rec.Code != http.StatusCreated {
		t.Fatalf("first create: expected %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if rec := create("RIVERSIDE"); rec.Code != http.StatusConflict {
		t.Errorf("duplicate create: expected %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	site := fixtures.CreateSite(ctx, "Riverside")

	req := testutil.NewJSONRequest(t, "POST", "/sites/"+site.ID.Hex()+"/delete", nil)
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", site.ID.Hex())
	rec := httptest.NewRecorder()
	handler.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	count, err := fixtures.DB().Collection("sites").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected site removed, found %d", count)
	}
}
