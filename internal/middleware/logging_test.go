package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func parseLogEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v\nraw: %s", err, buf.String())
	}
	return entry
}

func TestLoggingMiddleware_LogsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/hostels", nil)
	req = req.WithContext(ContextWithClientID(req.Context(), "client-123"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := parseLogEntry(t, &buf)
	if entry["method"] != "GET" {
		t.Errorf("method = %v, want GET", entry["method"])
	}
	if entry["path"] != "/api/hostels" {
		t.Errorf("path = %v, want /api/hostels", entry["path"])
	}
	if status, _ := entry["status"].(float64); status != 200 {
		t.Errorf("status = %v, want 200", entry["status"])
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("expected 'duration_ms' field in log entry")
	}
	if entry["client_id"] != "client-123" {
		t.Errorf("client_id = %v, want client-123", entry["client_id"])
	}
}

func TestLoggingMiddleware_OmitsClientIDWhenAbsent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if _, ok := parseLogEntry(t, &buf)["client_id"]; ok {
		t.Error("client_id should be omitted")
	}
}

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusFound, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusConflict, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
		{http.StatusServiceUnavailable, "ERROR"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if got := parseLogEntry(t, &buf)["level"]; got != tt.level {
			t.Errorf("status %d: level = %v, want %s", tt.status, got, tt.level)
		}
	}
}

type fakeHTTPMetrics struct {
	statuses  []int
	durations []time.Duration
}

func (f *fakeHTTPMetrics) RecordHTTPStatus(statusCode int) {
	f.statuses = append(f.statuses, statusCode)
}

func (f *fakeHTTPMetrics) RecordRequestDuration(d time.Duration) {
	f.durations = append(f.durations, d)
}

func TestMetricsMiddleware_RecordsStatusAndDuration(t *testing.T) {
	m := &fakeHTTPMetrics{}
	handler := NewMetricsMiddleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/bookings", nil))

	if len(m.statuses) != 1 || m.statuses[0] != http.StatusCreated {
		t.Errorf("statuses = %v, want [201]", m.statuses)
	}
	if len(m.durations) != 1 || m.durations[0] < 0 {
		t.Errorf("durations = %v, want one non-negative value", m.durations)
	}
}
