package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestClientIdentityMiddleware_IssuesCookieForNewClient(t *testing.T) {
	var gotID string
	handler := NewClientIdentityMiddleware(ClientConfig{MaxAge: 3600})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := ClientIDFromContext(r.Context())
		if err != nil {
			t.Fatalf("ClientIDFromContext() error = %v", err)
		}
		gotID = id
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if _, err := uuid.Parse(gotID); err != nil {
		t.Fatalf("client ID %q is not a UUID: %v", gotID, err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != ClientCookieName || c.Value != gotID {
		t.Errorf("cookie = %s=%s, want %s=%s", c.Name, c.Value, ClientCookieName, gotID)
	}
	if !c.HttpOnly {
		t.Error("client cookie should be HttpOnly")
	}
	if c.MaxAge != 3600 {
		t.Errorf("MaxAge = %d, want 3600", c.MaxAge)
	}
}

func TestClientIdentityMiddleware_ReusesValidCookie(t *testing.T) {
	existing := uuid.NewString()
	var gotID string
	handler := NewClientIdentityMiddleware(ClientConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = ClientIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookieName, Value: existing})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if gotID != existing {
		t.Errorf("client ID = %q, want %q", gotID, existing)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("should not reissue cookie for a valid client ID")
	}
}

func TestClientIdentityMiddleware_ReplacesMalformedCookie(t *testing.T) {
	var gotID string
	handler := NewClientIdentityMiddleware(ClientConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = ClientIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookieName, Value: "../../etc"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if gotID == "../../etc" {
		t.Fatal("malformed client ID must not be used")
	}
	if len(w.Result().Cookies()) != 1 {
		t.Error("expected a fresh client cookie")
	}
}

func TestClientIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := ClientIDFromContext(req.Context()); err == nil {
		t.Error("expected error when client ID is absent")
	}
}
