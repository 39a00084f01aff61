package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/hostelhunt/internal/booking"
	"github.com/hitoshi/hostelhunt/internal/model"
)

func TestViewHandler_DashboardAnalytics_Success(t *testing.T) {
	svc := &mockBookingService{
		analyticsFn: func(ctx context.Context) (*booking.Analytics, error) {
			return &booking.Analytics{
				TotalBookings:  3,
				ActiveBookings: 1,
				TopHostel:      &booking.TopHostel{HostelID: 2, Name: "Oceania Apartments", Bookings: 2},
			}, nil
		},
	}
	h := NewViewHandler(&mockCatalogService{}, svc)

	w := httptest.NewRecorder()
	h.DashboardAnalytics(w, httptest.NewRequest(http.MethodGet, "/dashboard/analytics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var view analyticsView
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if view.Analytics.TotalBookings != 3 || view.Analytics.TopHostel.Name != "Oceania Apartments" {
		t.Errorf("analytics = %+v", view.Analytics)
	}
}

func TestViewHandler_DashboardAnalytics_StoreError(t *testing.T) {
	svc := &mockBookingService{
		analyticsFn: func(ctx context.Context) (*booking.Analytics, error) {
			return nil, errors.New("db down")
		},
	}
	h := NewViewHandler(&mockCatalogService{}, svc)

	w := httptest.NewRecorder()
	h.DashboardAnalytics(w, httptest.NewRequest(http.MethodGet, "/dashboard/analytics", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := parseAPIErrorResponse(t, w); body["code"] != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeInternal)
	}
}
