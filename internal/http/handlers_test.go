package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/settings"
	"fintrack/internal/store/memory"
)

const testUser = "local"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st := memory.New()
	svc := services.NewRecordService(st, nil)

	prefs, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("settings.Open: %v", err)
	}

	srv := NewServer(":0", testUser, svc, prefs, log.New(log.DefaultConfig()))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	if _, err := st.Subscribe(context.Background(), testUser, srv.ApplySnapshot); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createTx(t *testing.T, srv *Server, body string) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	return decode[map[string]string](t, rec)["id"]
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d", path, rec.Code)
		}
	}
}

func TestCreateAndView(t *testing.T) {
	srv := newTestServer(t)

	createTx(t, srv, `{"text":"groceries","amount":"20.00","type":"expense","category":"Food","date":"2024-01-05"}`)
	createTx(t, srv, `{"text":"paycheck","amount":"100.00","type":"income","category":"Salary","date":"2024-01-10"}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/ledger?year=2024&month=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/ledger = %d: %s", rec.Code, rec.Body.String())
	}
	view := decode[ledgerJSON](t, rec)

	if view.Summary.BalanceCents != 8000 || view.Summary.IncomeCents != 10000 || view.Summary.ExpenseCents != 2000 {
		t.Fatalf("summary = %+v", view.Summary)
	}
	if view.Summary.TotalBalance != "$80.00" {
		t.Fatalf("TotalBalance = %q", view.Summary.TotalBalance)
	}
	if len(view.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(view.Records))
	}
	// Date descending: the Jan 10 paycheck first.
	if view.Records[0].Text != "paycheck" || view.Records[1].Text != "groceries" {
		t.Fatalf("record order = [%s %s]", view.Records[0].Text, view.Records[1].Text)
	}
	if len(view.ByCategory) != 1 || view.ByCategory[0].Category != "Food" || view.ByCategory[0].Cents != 2000 {
		t.Fatalf("breakdown = %+v", view.ByCategory)
	}
}

func TestViewFilterAndBadParams(t *testing.T) {
	srv := newTestServer(t)
	createTx(t, srv, `{"text":"groceries","amount":"20.00","type":"expense","category":"Food","date":"2024-01-05"}`)
	createTx(t, srv, `{"text":"paycheck","amount":"100.00","type":"income","category":"Salary","date":"2024-01-10"}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/ledger?year=2024&month=1&filter=income", "")
	view := decode[ledgerJSON](t, rec)
	if len(view.Records) != 1 || view.Records[0].Type != "income" {
		t.Fatalf("income filter records = %+v", view.Records)
	}
	// The summary still spans the whole record set.
	if view.Summary.ExpenseCents != 2000 {
		t.Fatalf("filtered summary = %+v", view.Summary)
	}

	for _, target := range []string{
		"/api/ledger?month=13",
		"/api/ledger?month=abc",
		"/api/ledger?year=next",
		"/api/ledger?filter=bogus",
	} {
		if rec := doJSON(t, srv, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("GET %s = %d, want 400", target, rec.Code)
		}
	}
}

func TestCreateValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		kind string
	}{
		{"missing text", `{"text":"","amount":"20.00","type":"expense","category":"Food","date":"2024-01-05"}`, "missing_field"},
		{"bad amount", `{"text":"x","amount":"zero","type":"expense","category":"Food","date":"2024-01-05"}`, "invalid_amount"},
		{"wrong category for type", `{"text":"x","amount":"20.00","type":"income","category":"Food","date":"2024-01-05"}`, "invalid_category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			resp := decode[map[string]errorJSON](t, rec)
			if resp["error"].Kind != tt.kind {
				t.Fatalf("kind = %q, want %q", resp["error"].Kind, tt.kind)
			}
		})
	}

	if rec := doJSON(t, srv, http.MethodPost, "/api/transactions", "{not json"); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d, want 400", rec.Code)
	}
}

func TestEditSessionFlow(t *testing.T) {
	srv := newTestServer(t)
	id := createTx(t, srv, `{"text":"groceries","amount":"20.00","type":"expense","category":"Food","date":"2024-01-05"}`)

	rec := doJSON(t, srv, http.MethodPost, "/api/edit/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("begin edit = %d: %s", rec.Code, rec.Body.String())
	}

	state := decode[editStateJSON](t, doJSON(t, srv, http.MethodGet, "/api/edit", ""))
	if !state.Editing || state.ID != id {
		t.Fatalf("edit state = %+v", state)
	}

	// Submit while editing updates the target and returns to idle.
	rec = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"text":"groceries weekly","amount":"25.00","type":"expense","category":"Food","date":"2024-01-06"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit while editing = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[map[string]string](t, rec)["id"]; got != id {
		t.Fatalf("updated id = %q, want %q", got, id)
	}

	state = decode[editStateJSON](t, doJSON(t, srv, http.MethodGet, "/api/edit", ""))
	if state.Editing {
		t.Fatalf("session should be idle after successful submit")
	}

	view := decode[ledgerJSON](t, doJSON(t, srv, http.MethodGet, "/api/ledger?year=2024&month=1", ""))
	if len(view.Records) != 1 || view.Records[0].Text != "groceries weekly" || view.Records[0].AmountCents != -2500 {
		t.Fatalf("record after edit = %+v", view.Records)
	}
}

func TestEditSessionFailedSubmitKeepsState(t *testing.T) {
	srv := newTestServer(t)
	id := createTx(t, srv, `{"text":"groceries","amount":"20.00","type":"expense","category":"Food","date":"2024-01-05"}`)

	doJSON(t, srv, http.MethodPost, "/api/edit/"+id, "")

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"text":"","amount":"25.00","type":"expense","category":"Food","date":"2024-01-06"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid submit = %d", rec.Code)
	}

	state := decode[editStateJSON](t, doJSON(t, srv, http.MethodGet, "/api/edit", ""))
	if !state.Editing || state.ID != id {
		t.Fatalf("failed submit must keep edit state, got %+v", state)
	}

	doJSON(t, srv, http.MethodDelete, "/api/edit", "")
	state = decode[editStateJSON](t, doJSON(t, srv, http.MethodGet, "/api/edit", ""))
	if state.Editing {
		t.Fatalf("cancel should return to idle")
	}
}

func TestEditBeginUnknownRecord(t *testing.T) {
	srv := newTestServer(t)
	if rec := doJSON(t, srv, http.MethodPost, "/api/edit/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("begin edit of unknown id = %d, want 404", rec.Code)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	srv := newTestServer(t)
	id := createTx(t, srv, `{"text":"groceries","amount":"20.00","type":"expense","category":"Food","date":"2024-01-05"}`)

	rec := doJSON(t, srv, http.MethodPut, "/api/transactions/"+id,
		`{"text":"groceries","amount":"30.00","type":"expense","category":"Food","date":"2024-01-05"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/transactions/missing",
		`{"text":"groceries","amount":"30.00","type":"expense","category":"Food","date":"2024-01-05"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update unknown id = %d, want 404", rec.Code)
	}

	if rec := doJSON(t, srv, http.MethodDelete, "/api/transactions/"+id, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodDelete, "/api/transactions/"+id, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d, want 404", rec.Code)
	}

	view := decode[ledgerJSON](t, doJSON(t, srv, http.MethodGet, "/api/ledger?year=2024&month=1", ""))
	if len(view.Records) != 0 {
		t.Fatalf("records after delete = %+v", view.Records)
	}
}

func TestDeleteCancelsMatchingEdit(t *testing.T) {
	srv := newTestServer(t)
	id := createTx(t, srv, `{"text":"groceries","amount":"20.00","type":"expense","category":"Food","date":"2024-01-05"}`)

	doJSON(t, srv, http.MethodPost, "/api/edit/"+id, "")
	doJSON(t, srv, http.MethodDelete, "/api/transactions/"+id, "")

	state := decode[editStateJSON](t, doJSON(t, srv, http.MethodGet, "/api/edit", ""))
	if state.Editing {
		t.Fatalf("deleting the edit target should cancel the session")
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/categories?type=expense", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("categories = %d", rec.Code)
	}
	resp := decode[map[string][]string](t, rec)
	if len(resp["categories"]) == 0 {
		t.Fatalf("expected expense categories, got %+v", resp)
	}

	if rec := doJSON(t, srv, http.MethodGet, "/api/categories?type=loan", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown type = %d, want 400", rec.Code)
	}
}

func TestSettingsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	createTx(t, srv, `{"text":"groceries","amount":"20.00","type":"expense","category":"Food","date":"2024-01-05"}`)

	rec := doJSON(t, srv, http.MethodPut, "/api/settings", `{"theme":"dark","currency":"EUR"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put settings = %d: %s", rec.Code, rec.Body.String())
	}

	got := decode[settings.Settings](t, doJSON(t, srv, http.MethodGet, "/api/settings", ""))
	if got.Theme != settings.ThemeDark || got.Currency != "EUR" {
		t.Fatalf("settings = %+v", got)
	}

	// Cached views must pick up the new symbol.
	view := decode[ledgerJSON](t, doJSON(t, srv, http.MethodGet, "/api/ledger?year=2024&month=1", ""))
	if view.Records[0].Amount != "-€20.00" {
		t.Fatalf("amount after currency change = %q", view.Records[0].Amount)
	}

	if rec := doJSON(t, srv, http.MethodPut, "/api/settings", `{"theme":"dark","currency":"XXX"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad currency = %d, want 422", rec.Code)
	}
}
