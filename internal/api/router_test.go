package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emailgenx/emailgenx/internal/db"
	"github.com/emailgenx/emailgenx/internal/db/models"
	"github.com/emailgenx/emailgenx/internal/mailbox"
	"github.com/emailgenx/emailgenx/internal/mailtm"
	"github.com/emailgenx/emailgenx/internal/monitor"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newFakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/domains", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hydra:member":[{"id":"d1","domain":"example.com","isActive":true}]}`))
	})
	mux.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"a1","address":"ignored@example.com"}`))
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"a1","token":"provider-token"}`))
	})
	mux.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"hydra:member":[{"from":{"address":"a@b.com"},"subject":"Hi"}]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRouter_AccountLifecycle(t *testing.T) {
	database, err := gorm.Open(sqlite.Open("file:router_lifecycle?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	apiKey, err := db.EnsureAPIKey(database)
	if err != nil {
		t.Fatalf("api key: %v", err)
	}

	provider := newFakeProvider(t)
	store := db.NewAccountStore(database)
	svc := mailbox.NewService(mailtm.NewClient(provider.URL, time.Second), store,
		mailbox.WithIDGenerator(func() string { return "ab12cd34" }))

	router := NewRouter(Deps{DB: database, Mailboxes: svc, Accounts: store})

	do := func(method, path string, authed bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if authed {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(http.MethodPost, "/api/accounts/42", false); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	rec := do(http.MethodPost, "/api/accounts/42", true)
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), "user_ab12cd34@example.com") {
		t.Fatalf("provision: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	rec = do(http.MethodGet, "/api/accounts/42/inbox", true)
	var inbox struct {
		Count int `json:"count"`
	}
	json.Unmarshal(rec.Body.Bytes(), &inbox)
	if rec.Code != http.StatusOK || inbox.Count != 1 {
		t.Fatalf("inbox: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodGet, "/api/accounts/42", true)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"subject":"Hi"`) {
		t.Fatalf("expected cached snapshot in record: %d %s", rec.Code, rec.Body.String())
	}

	if rec = do(http.MethodDelete, "/api/accounts/42", true); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec = do(http.MethodGet, "/api/accounts/42", true); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}

	rec = do(http.MethodGet, "/healthz", false)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"accounts":0`) {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_AdminAPIKey(t *testing.T) {
	database, err := gorm.Open(sqlite.Open("file:router_admin?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.EnsureAPIKey(database); err != nil {
		t.Fatalf("api key: %v", err)
	}
	store := db.NewAccountStore(database)
	router := NewRouter(Deps{DB: database, Accounts: store, AdminPassword: "pw"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/apikey", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/apikey/regenerate", nil)
	req.SetBasicAuth("admin", "pw")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), db.GetAPIKey(database)) {
		t.Fatalf("regenerate: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_AdminActivity(t *testing.T) {
	database, err := gorm.Open(sqlite.Open("file:router_activity?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	mon := monitor.New(database)
	mon.Record(models.CommandLog{ChatID: 5, Command: "generate", Success: true})
	mon.Wait()

	router := NewRouter(Deps{DB: database, Accounts: db.NewAccountStore(database), Activity: mon})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/activity?limit=5", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"generate":1`) {
		t.Fatalf("activity: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/activity", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("clear activity: %d", rec.Code)
	}
	if stats := mon.Stats(); stats.Total != 0 {
		t.Fatalf("expected cleared stats, got %+v", stats)
	}
}
