package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type mockValidator struct {
	validateFn func(rawURL string) error
}

func (m *mockValidator) Validate(rawURL string) error {
	if m.validateFn != nil {
		return m.validateFn(rawURL)
	}
	return nil
}

func serveBody(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestLoader_Fetch_Success(t *testing.T) {
	ts := serveBody(t, http.StatusOK, `[
		{"id": 11, "name": "Lakeview", "location": "Kisumu", "price": 5000},
		{"id": 12, "name": "Hilltop", "location": "Nyeri", "price": 4200, "currency": "USD"}
	]`)

	l := NewLoader(ts.Client(), nil, 1024*1024)
	c, err := l.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if got := c.GetByID(11).Currency; got != "KES" {
		t.Errorf("default currency = %q, want KES", got)
	}
	if got := c.GetByID(12).Currency; got != "USD" {
		t.Errorf("currency = %q, want USD", got)
	}
}

func TestLoader_Fetch_ValidatorRejects(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	v := &mockValidator{validateFn: func(string) error { return errors.New("blocked") }}
	l := NewLoader(ts.Client(), v, 1024)

	if _, err := l.Fetch(context.Background(), ts.URL); err == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Error("request should not be sent when the URL is rejected")
	}
}

func TestLoader_Fetch_Non2xx_ReturnsError(t *testing.T) {
	ts := serveBody(t, http.StatusNotFound, `not found`)

	l := NewLoader(ts.Client(), nil, 1024)
	if _, err := l.Fetch(context.Background(), ts.URL); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoader_Fetch_TooLarge_ReturnsError(t *testing.T) {
	ts := serveBody(t, http.StatusOK, `[{"id":1,"name":"`+strings.Repeat("x", 200)+`"}]`)

	l := NewLoader(ts.Client(), nil, 64)
	_, err := l.Fetch(context.Background(), ts.URL)
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("error = %v, want size error", err)
	}
}

func TestLoader_Fetch_InvalidDocuments(t *testing.T) {
	tests := map[string]string{
		"not json":     `{oops`,
		"object":       `{"id":1}`,
		"empty array":  `[]`,
		"duplicate id": `[{"id":1,"name":"A"},{"id":1,"name":"B"}]`,
		"missing name": `[{"id":1}]`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			ts := serveBody(t, http.StatusOK, body)
			l := NewLoader(ts.Client(), nil, 1024)
			if _, err := l.Fetch(context.Background(), ts.URL); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
