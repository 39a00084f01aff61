package booking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/hostelhunt/internal/model"
)

// DemoFavorites はデモ用のお気に入りホステルID。
var DemoFavorites = []int64{1, 3}

// DemoBookings はダッシュボード表示用のデモ予約を返す。
// IDは1から10で、ホステルIDは組み込みカタログに対応する。
func DemoBookings() []*model.Booking {
	demo := []struct {
		hostelID          int64
		room, name, email string
		checkIn, checkOut string
		status            model.BookingStatus
	}{
		{1, "Room 12A", "Agnes Mwangi", "agnesm@example.com", "2025-02-10", "2025-02-15", model.BookingStatusPending},
		{2, "Room 3B", "Amina Mohammed", "amina@gmail.com", "2025-03-01", "2025-03-10", model.BookingStatusConfirmed},
		{3, "Room 8C", "William Onyango", "willyo@gmail.com", "2025-01-22", "2025-09-25", model.BookingStatusCompleted},
		{4, "Room 17D", "Mary Njau", "maryn@gmail.com", "2025-03-19", "2025-03-25", model.BookingStatusConfirmed},
		{5, "Room 3A", "Jackline Waweru", "jackw@gmail.com", "2025-05-05", "2025-10-19", model.BookingStatusCompleted},
		{6, "Room 6B", "Lucy Wairimu", "lucyw@gmail.com", "2025-03-22", "2025-03-25", model.BookingStatusCancelled},
		{7, "Room 15F", "Milcah Nthenya", "milcahn@gmail.com", "2025-02-22", "2025-07-25", model.BookingStatusCompleted},
		{8, "Room 4A", "Brian Kariuki", "briank@gmail.com", "2025-01-15", "2025-01-25", model.BookingStatusCompleted},
		{9, "Room 16F", "Jane Moraa", "janem@gmail.com", "2025-04-16", "2025-04-25", model.BookingStatusCancelled},
		{10, "Room 3G", "Alice Waithera", "alicew@gmail.com", "2025-01-22", "2025-09-25", model.BookingStatusCompleted},
	}

	bookings := make([]*model.Booking, len(demo))
	for i, d := range demo {
		bookings[i] = &model.Booking{
			ID:          int64(i + 1),
			HostelID:    d.hostelID,
			CheckIn:     d.checkIn,
			CheckOut:    d.checkOut,
			Guests:      1,
			Room:        d.room,
			GuestName:   d.name,
			GuestEmail:  d.email,
			Status:      d.status,
			BookingDate: "2025-01-05",
		}
	}
	return bookings
}

// SeedDemoData は予約が1件もない場合にデモ予約とデモお気に入りを登録する。
// 既に予約がある場合は何もしない。登録した予約数を返す。
// オブザーバーには通知しない。
func (s *Store) SeedDemoData(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxID, err := s.bookings.MaxID(ctx)
	if err != nil {
		return 0, fmt.Errorf("予約の確認に失敗しました: %w", err)
	}
	if maxID > 0 {
		slog.Info("demo data skipped, bookings already exist",
			slog.Int64("max_booking_id", maxID),
		)
		return 0, nil
	}

	now := s.now()
	bookings := DemoBookings()
	for _, b := range bookings {
		b.UpdatedAt = now
		if err := s.bookings.Create(ctx, b); err != nil {
			return 0, fmt.Errorf("デモ予約の登録に失敗しました: %w", err)
		}
		s.ids.Observe(b.ID)
	}

	for _, id := range DemoFavorites {
		ok, err := s.favorites.Contains(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("お気に入りの確認に失敗しました: %w", err)
		}
		if ok {
			continue
		}
		if _, err := s.favorites.Toggle(ctx, id); err != nil {
			return 0, fmt.Errorf("デモお気に入りの登録に失敗しました: %w", err)
		}
	}

	slog.Info("demo data seeded",
		slog.Int("bookings", len(bookings)),
		slog.Int("favorites", len(DemoFavorites)),
	)
	return len(bookings), nil
}
