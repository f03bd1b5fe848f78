package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"frogbudget/internal/analytics"
	applog "frogbudget/internal/log"
	"frogbudget/internal/services"
	"frogbudget/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	svc := services.NewBudgetService(repo, nil)
	srv := NewServer(":0", svc, 16, time.Minute, applog.New(applog.DefaultConfig()))

	t.Cleanup(func() {
		_ = svc.Close()
	})
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		rec := doRequest(t, srv, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
		if rec.Body.String() != want {
			t.Errorf("%s body = %q, want %q", path, rec.Body.String(), want)
		}
	}
}

func TestMissingUserHeader(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/dashboard", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "X-User-ID") {
		t.Errorf("body %q should name the missing header", rec.Body.String())
	}
}

func TestProfileRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/profile", "alice", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get before put: status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/profile", "alice", profilePayload{
		IncomeAmount:    "2500.00",
		IncomeFrequency: "biweekly",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put profile: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/profile", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile: status = %d", rec.Code)
	}
	var got profileResponse
	decodeBody(t, rec, &got)
	if got.IncomeCents != 250000 {
		t.Errorf("IncomeCents = %d, want 250000", got.IncomeCents)
	}
	if got.IncomeFrequency != "biweekly" {
		t.Errorf("IncomeFrequency = %q, want biweekly", got.IncomeFrequency)
	}
	if got.Currency != "USD" {
		t.Errorf("Currency = %q, want default USD", got.Currency)
	}
}

func TestProfileValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/profile", "alice", profilePayload{
		IncomeAmount:    "2500.00",
		IncomeFrequency: "hourly",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSeedCategories(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/categories/seed", "alice", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var seeded []categoryResponse
	decodeBody(t, rec, &seeded)
	if len(seeded) != 8 {
		t.Fatalf("seeded %d categories, want 8", len(seeded))
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/categories/seed", "alice", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second seed: status = %d, want 409", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/categories", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var list categoryListResponse
	decodeBody(t, rec, &list)
	if len(list.Categories) != 8 {
		t.Errorf("listed %d categories, want 8", len(list.Categories))
	}
	if list.PercentageSum != 97 {
		t.Errorf("PercentageSum = %v, want 97", list.PercentageSum)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/categories", "alice", categoryPayload{
		Name: "Groceries", Percentage: 40, Color: "#22c55e",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created categoryResponse
	decodeBody(t, rec, &created)
	if created.ID == "" {
		t.Fatal("created category has no ID")
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/categories/"+created.ID, "alice", categoryPayload{
		Name: "Food", Percentage: 45, Color: "#22c55e",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/categories/missing", "alice", categoryPayload{
		Name: "X", Percentage: 1,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing: status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/categories/"+created.ID, "alice", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/categories", "alice", nil)
	var list categoryListResponse
	decodeBody(t, rec, &list)
	if len(list.Categories) != 0 {
		t.Errorf("listed %d categories after delete, want 0", len(list.Categories))
	}
}

func TestPurchaseRequiresKnownCategory(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/purchases", "alice", purchasePayload{
		CategoryID: "nope", Name: "Coffee", Amount: "4.50", Date: "2026-08-30",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body = %s", rec.Code, rec.Body.String())
	}
}

func TestPurchaseLifecycleAndDashboard(t *testing.T) {
	srv := newTestServer(t)
	today := time.Now().Format("2006-01-02")

	doRequest(t, srv, http.MethodPut, "/api/profile", "alice", profilePayload{
		IncomeAmount: "2000.00", IncomeFrequency: "monthly",
	})
	rec := doRequest(t, srv, http.MethodPost, "/api/categories", "alice", categoryPayload{
		Name: "Food", Percentage: 50,
	})
	var cat categoryResponse
	decodeBody(t, rec, &cat)

	rec = doRequest(t, srv, http.MethodPost, "/api/purchases", "alice", purchasePayload{
		CategoryID: cat.ID, Name: "Groceries", Amount: "123.45", Date: today,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create purchase: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var purchase purchaseResponse
	decodeBody(t, rec, &purchase)
	if purchase.AmountCents != 12345 {
		t.Errorf("AmountCents = %d, want 12345", purchase.AmountCents)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/dashboard", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status = %d", rec.Code)
	}
	var result analytics.Result
	decodeBody(t, rec, &result)
	if result.TotalSpentThisMonth != 123.45 {
		t.Errorf("TotalSpentThisMonth = %v, want 123.45", result.TotalSpentThisMonth)
	}
	if result.TotalBudgetedThisMonth != 1000 {
		t.Errorf("TotalBudgetedThisMonth = %v, want 1000", result.TotalBudgetedThisMonth)
	}

	// A mutation must invalidate the cached dashboard.
	rec = doRequest(t, srv, http.MethodDelete, "/api/purchases/"+purchase.ID, "alice", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete purchase: status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/dashboard", "alice", nil)
	decodeBody(t, rec, &result)
	if result.TotalSpentThisMonth != 0 {
		t.Errorf("TotalSpentThisMonth after delete = %v, want 0", result.TotalSpentThisMonth)
	}
}

func TestDashboardRejectsBadBoolParam(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/dashboard?wishlist=maybe", "alice", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDashboardWishlistOption(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPut, "/api/profile", "alice", profilePayload{
		IncomeAmount: "2000.00", IncomeFrequency: "monthly",
	})
	rec := doRequest(t, srv, http.MethodPost, "/api/categories", "alice", categoryPayload{
		Name: "Tech", Percentage: 30,
	})
	var cat categoryResponse
	decodeBody(t, rec, &cat)

	rec = doRequest(t, srv, http.MethodPost, "/api/wishlist", "alice", wishlistPayload{
		CategoryID: cat.ID, Name: "Keyboard", Amount: "150.00", Priority: "high",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create wishlist: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/dashboard?wishlist=true", "alice", nil)
	var withWishlist analytics.Result
	decodeBody(t, rec, &withWishlist)
	if withWishlist.TotalSpentThisMonth != 150 {
		t.Errorf("TotalSpentThisMonth with wishlist = %v, want 150", withWishlist.TotalSpentThisMonth)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/dashboard", "alice", nil)
	var without analytics.Result
	decodeBody(t, rec, &without)
	if without.TotalSpentThisMonth != 0 {
		t.Errorf("TotalSpentThisMonth without wishlist = %v, want 0", without.TotalSpentThisMonth)
	}
	if without.TotalWishlistCost != 150 {
		t.Errorf("TotalWishlistCost = %v, want 150", without.TotalWishlistCost)
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPut, "/api/profile", "alice", profilePayload{
		IncomeAmount: "2000.00", IncomeFrequency: "monthly",
	})
	rec := doRequest(t, srv, http.MethodPost, "/api/categories", "alice", categoryPayload{
		Name: "Food", Percentage: 50,
	})
	var cat categoryResponse
	decodeBody(t, rec, &cat)
	doRequest(t, srv, http.MethodPost, "/api/purchases", "alice", purchasePayload{
		CategoryID: cat.ID, Name: "Lunch", Amount: "12.00", Date: "2026-08-15",
	})

	rec = doRequest(t, srv, http.MethodGet, "/api/purchases/export.csv", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 row: %q", len(lines), rec.Body.String())
	}
	if lines[0] != "date,name,amount,category,notes" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2026-08-15,Lunch,12.00,Food," {
		t.Errorf("row = %q", lines[1])
	}
}

func TestImportCSV(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/categories", "alice", categoryPayload{
		Name: "Imported", Percentage: 10,
	})
	var cat categoryResponse
	decodeBody(t, rec, &cat)

	statement := strings.Join([]string{
		"Transaction Date,Description,Amount",
		"01/15/2026,STORE PURCHASE,-42.00",
		"01/16/2026,Payment Thank You,500.00",
	}, "\n")

	req := httptest.NewRequest(http.MethodPost, "/api/purchases/import?format=chase&category="+cat.ID, strings.NewReader(statement))
	req.Header.Set("X-User-ID", "alice")
	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp importResponse
	decodeBody(t, rec, &resp)
	if resp.Imported != 1 {
		t.Errorf("Imported = %d, want 1", resp.Imported)
	}
	if resp.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", resp.Skipped)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/purchases", "alice", nil)
	var purchases []purchaseResponse
	decodeBody(t, rec, &purchases)
	if len(purchases) != 1 {
		t.Fatalf("stored %d purchases, want 1", len(purchases))
	}
	if purchases[0].AmountCents != 4200 {
		t.Errorf("AmountCents = %d, want 4200", purchases[0].AmountCents)
	}
}

func TestReorderCategories(t *testing.T) {
	srv := newTestServer(t)

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		rec := doRequest(t, srv, http.MethodPost, "/api/categories", "alice", categoryPayload{
			Name: name, Percentage: 10,
		})
		var cat categoryResponse
		decodeBody(t, rec, &cat)
		ids = append(ids, cat.ID)
	}

	rec := doRequest(t, srv, http.MethodPost, "/api/categories/reorder", "alice", reorderPayload{
		OrderedIDs: []string{ids[2], ids[0], ids[1]},
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reorder: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/categories", "alice", nil)
	var list categoryListResponse
	decodeBody(t, rec, &list)
	if len(list.Categories) != 3 {
		t.Fatalf("listed %d categories", len(list.Categories))
	}
	if list.Categories[0].Name != "C" || list.Categories[1].Name != "A" || list.Categories[2].Name != "B" {
		t.Errorf("order = %s,%s,%s, want C,A,B",
			list.Categories[0].Name, list.Categories[1].Name, list.Categories[2].Name)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/categories", "alice", categoryPayload{
		Name: "Private", Percentage: 10,
	})
	var cat categoryResponse
	decodeBody(t, rec, &cat)

	rec = doRequest(t, srv, http.MethodGet, "/api/categories", "bob", nil)
	var list categoryListResponse
	decodeBody(t, rec, &list)
	if len(list.Categories) != 0 {
		t.Errorf("bob sees %d of alice's categories", len(list.Categories))
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/categories/"+cat.ID, "bob", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user delete: status = %d, want 404", rec.Code)
	}
}

func TestUnknownJSONFieldRejected(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"X","percentage":1,"bogus":true}`))
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}
