package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
)

func testClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("IDENTITY_SERVICE_URL", srv.URL)
	t.Setenv("IDENTITY_SERVICE_API_KEY", "svc-key")

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	c, err := NewClient(log)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestExchangeCode(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "svc-key" {
			t.Errorf("unexpected api key %q", got)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["code"] != "auth-code" {
			t.Errorf("unexpected code %q", body["code"])
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"session_token": "tok-1"})
	}))

	token, err := c.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("unexpected token %q", token)
	}
}

func TestCurrentUser(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("unexpected authorization %q", got)
		}
		_ = json.NewEncoder(w).Encode(Identity{ID: "u1", Email: "u1@example.com"})
	}))

	ident, err := c.CurrentUser(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if ident.ID != "u1" || ident.Email != "u1@example.com" {
		t.Fatalf("unexpected identity %+v", ident)
	}
}

func TestCurrentUserUnauthenticated(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no session", http.StatusUnauthorized)
	}))

	_, err := c.CurrentUser(context.Background(), "stale")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
