package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/hostelhunt/internal/booking"
	"github.com/hitoshi/hostelhunt/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric はレジストリから指定名・ラベルのメトリクスを探す。
func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	return nil
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string)
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	m := findMetric(t, reg, name, labels)
	if m == nil {
		t.Fatalf("metric %s %v not found", name, labels)
	}
	return m.GetCounter().GetValue()
}

func TestObserveBookingEvent_Created(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveBookingEvent(booking.Event{Type: booking.EventBookingCreated, Booking: &model.Booking{ID: 1}})
	c.ObserveBookingEvent(booking.Event{Type: booking.EventBookingCreated, Booking: &model.Booking{ID: 2}})

	if v := counterValue(t, reg, "hostelhunt_bookings_created_total", nil); v != 2 {
		t.Errorf("bookings_created_total = %v, want 2", v)
	}
}

func TestObserveBookingEvent_StatusChanged_LabelsFromTo(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveBookingEvent(booking.Event{
		Type:    booking.EventStatusChanged,
		From:    model.BookingStatusPending,
		Booking: &model.Booking{ID: 1, Status: model.BookingStatusConfirmed},
	})

	v := counterValue(t, reg, "hostelhunt_booking_status_transitions_total",
		map[string]string{"from": "pending", "to": "confirmed"})
	if v != 1 {
		t.Errorf("transitions{pending,confirmed} = %v, want 1", v)
	}
}

func TestObserveBookingEvent_FavoriteToggled_Action(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveBookingEvent(booking.Event{Type: booking.EventFavoriteToggled, HostelID: 1, Favorite: true})
	c.ObserveBookingEvent(booking.Event{Type: booking.EventFavoriteToggled, HostelID: 1, Favorite: false})
	c.ObserveBookingEvent(booking.Event{Type: booking.EventFavoriteToggled, HostelID: 2, Favorite: true})

	if v := counterValue(t, reg, "hostelhunt_favorite_toggles_total", map[string]string{"action": "added"}); v != 2 {
		t.Errorf("added = %v, want 2", v)
	}
	if v := counterValue(t, reg, "hostelhunt_favorite_toggles_total", map[string]string{"action": "removed"}); v != 1 {
		t.Errorf("removed = %v, want 1", v)
	}
}

func TestOnLoginOnLogout(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.OnLogin(model.NewMockUser("a@b.com"))
	c.OnLogout()
	c.OnLogin(model.NewMockUser("a@b.com"))

	if v := counterValue(t, reg, "hostelhunt_logins_total", nil); v != 2 {
		t.Errorf("logins_total = %v, want 2", v)
	}
	if v := counterValue(t, reg, "hostelhunt_logouts_total", nil); v != 1 {
		t.Errorf("logouts_total = %v, want 1", v)
	}
}

func TestRecordHTTPStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(409)

	if v := counterValue(t, reg, "hostelhunt_http_status_total", map[string]string{"status_code": "200"}); v != 2 {
		t.Errorf("200 = %v, want 2", v)
	}
	if v := counterValue(t, reg, "hostelhunt_http_status_total", map[string]string{"status_code": "409"}); v != 1 {
		t.Errorf("409 = %v, want 1", v)
	}
}

func TestRecordRequestDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequestDuration(150 * time.Millisecond)

	m := findMetric(t, reg, "hostelhunt_http_request_duration_seconds", nil)
	if m == nil {
		t.Fatal("histogram not found")
	}
	if m.GetHistogram().GetSampleCount() != 1 {
		t.Errorf("sample count = %d, want 1", m.GetHistogram().GetSampleCount())
	}
}

func TestRecordBookingsCompletedAndCatalogSize(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBookingsCompleted(3)
	c.SetCatalogSize(10)

	if v := counterValue(t, reg, "hostelhunt_bookings_auto_completed_total", nil); v != 3 {
		t.Errorf("auto_completed = %v, want 3", v)
	}
	m := findMetric(t, reg, "hostelhunt_catalog_hostels", nil)
	if m == nil || m.GetGauge().GetValue() != 10 {
		t.Errorf("catalog_hostels = %v, want 10", m)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObserveBookingEvent(booking.Event{Type: booking.EventBookingCreated})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body, _ := io.ReadAll(w.Body)
	if !strings.Contains(string(body), "hostelhunt_bookings_created_total 1") {
		t.Errorf("response missing bookings_created_total:\n%s", body)
	}
}
