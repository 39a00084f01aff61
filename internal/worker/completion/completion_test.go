package completion

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/hostelhunt/internal/booking"
	"github.com/hitoshi/hostelhunt/internal/catalog"
	"github.com/hitoshi/hostelhunt/internal/model"
	"github.com/hitoshi/hostelhunt/internal/repository"
)

// mockStore はBookingStoreのモック実装。
type mockStore struct {
	listFn   func(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	updateFn func(ctx context.Context, id int64, next model.BookingStatus) (*model.Booking, error)
	updated  []int64
}

func (m *mockStore) ListBookings(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	return m.listFn(ctx, filter)
}

func (m *mockStore) UpdateStatus(ctx context.Context, id int64, next model.BookingStatus) (*model.Booking, error) {
	m.updated = append(m.updated, id)
	if m.updateFn != nil {
		return m.updateFn(ctx, id, next)
	}
	return &model.Booking{ID: id, Status: next}, nil
}

type recorder struct {
	counts []int
}

func (r *recorder) RecordBookingsCompleted(count int) {
	r.counts = append(r.counts, count)
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func fixedNow(s string) func() time.Time {
	return func() time.Time {
		t, _ := time.Parse(model.DateLayout, s)
		return t.Add(10 * time.Hour)
	}
}

func TestJob_Run_CompletesPastCheckoutOnly(t *testing.T) {
	store := &mockStore{
		listFn: func(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
			if filter.Status != model.BookingStatusConfirmed {
				t.Errorf("filter = %+v, want confirmed", filter)
			}
			return []*model.Booking{
				{ID: 1, CheckOut: "2025-03-09", Status: model.BookingStatusConfirmed},
				{ID: 2, CheckOut: "2025-03-10", Status: model.BookingStatusConfirmed},
				{ID: 3, CheckOut: "2025-04-01", Status: model.BookingStatusConfirmed},
				{ID: 4, CheckOut: "not-a-date", Status: model.BookingStatusConfirmed},
			}, nil
		},
	}
	rec := &recorder{}
	var buf bytes.Buffer
	job := NewJob(store, rec, newTestLogger(&buf))
	job.Now = fixedNow("2025-03-10")

	n, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n != 1 {
		t.Errorf("completed = %d, want 1", n)
	}
	if len(store.updated) != 1 || store.updated[0] != 1 {
		t.Errorf("updated = %v, want [1]", store.updated)
	}
	if len(rec.counts) != 1 || rec.counts[0] != 1 {
		t.Errorf("recorded = %v, want [1]", rec.counts)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"completed_count":1`)) {
		t.Errorf("log missing completed_count: %s", buf.String())
	}
}

func TestJob_Run_SkipsRacedTransitionsAndContinuesOnError(t *testing.T) {
	store := &mockStore{
		listFn: func(context.Context, model.BookingFilter) ([]*model.Booking, error) {
			return []*model.Booking{
				{ID: 1, CheckOut: "2025-01-01"},
				{ID: 2, CheckOut: "2025-01-01"},
				{ID: 3, CheckOut: "2025-01-01"},
				{ID: 4, CheckOut: "2025-01-01"},
			}, nil
		},
		updateFn: func(ctx context.Context, id int64, next model.BookingStatus) (*model.Booking, error) {
			switch id {
			case 1:
				return nil, model.NewInvalidTransitionError(model.BookingStatusCancelled, next)
			case 2:
				return nil, errors.New("connection reset")
			case 3:
				return nil, nil
			}
			return &model.Booking{ID: id, Status: next}, nil
		},
	}
	var buf bytes.Buffer
	job := NewJob(store, nil, newTestLogger(&buf))
	job.Now = fixedNow("2025-02-01")

	n, err := job.Run(context.Background())
	if n != 1 {
		t.Errorf("completed = %d, want 1", n)
	}
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(store.updated) != 4 {
		t.Errorf("updated = %v, want all four attempted", store.updated)
	}
}

func TestJob_Run_ListError(t *testing.T) {
	store := &mockStore{
		listFn: func(context.Context, model.BookingFilter) ([]*model.Booking, error) {
			return nil, errors.New("db down")
		},
	}
	rec := &recorder{}
	var buf bytes.Buffer
	job := NewJob(store, rec, newTestLogger(&buf))

	if _, err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.counts) != 0 {
		t.Errorf("recorded = %v, want none", rec.counts)
	}
}

func TestJob_Run_WithBookingStore(t *testing.T) {
	cat, err := catalog.New(catalog.Fixture())
	if err != nil {
		t.Fatal(err)
	}
	now := fixedNow("2025-03-20")
	store, err := booking.NewStore(context.Background(), booking.Dependencies{
		Catalog:   cat,
		Bookings:  repository.NewMemoryBookingRepo(),
		Favorites: repository.NewMemoryFavoriteRepo(),
	}, booking.Options{Now: now})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SeedDemoData(context.Background()); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	job := NewJob(store, nil, newTestLogger(&buf))
	job.Now = now

	n, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("completed = %d, want 1", n)
	}

	b2, _ := store.GetBookingByID(context.Background(), 2)
	b4, _ := store.GetBookingByID(context.Background(), 4)
	if b2.Status != model.BookingStatusCompleted {
		t.Errorf("booking 2 = %s, want completed", b2.Status)
	}
	if b4.Status != model.BookingStatusConfirmed {
		t.Errorf("booking 4 = %s, want confirmed", b4.Status)
	}

	// 2回目は対象なし
	if n, err := job.Run(context.Background()); err != nil || n != 0 {
		t.Errorf("second Run() = (%d, %v), want (0, nil)", n, err)
	}
}

func TestJob_Start_StopsOnCancel(t *testing.T) {
	calls := make(chan struct{}, 10)
	store := &mockStore{
		listFn: func(context.Context, model.BookingFilter) ([]*model.Booking, error) {
			calls <- struct{}{}
			return nil, nil
		},
	}
	var buf bytes.Buffer
	job := NewJob(store, nil, newTestLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, time.Hour)
		close(done)
	}()

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not run immediately")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
