package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/hostelhunt/internal/model"
)

// MemoryBookingRepo はプロセス内メモリの予約リポジトリ。
// 作成順のスライスとIDインデックスを保持し、読み出しは常にコピーを返す。
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings []*model.Booking
	byID     map[int64]*model.Booking
}

// NewMemoryBookingRepo はMemoryBookingRepoを生成する。
func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{
		byID: make(map[int64]*model.Booking),
	}
}

// Create は予約を末尾に追加する。
func (r *MemoryBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[booking.ID]; exists {
		return fmt.Errorf("booking %d already exists", booking.ID)
	}
	b := booking.Clone()
	r.bookings = append(r.bookings, b)
	r.byID[b.ID] = b
	return nil
}

// FindByID は指定IDの予約のコピーを返す。見つからない場合はnil。
func (r *MemoryBookingRepo) FindByID(_ context.Context, id int64) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return b.Clone(), nil
}

// List は条件に一致する予約のコピーを作成順で返す。
func (r *MemoryBookingRepo) List(_ context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		if filter.Matches(b) {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}

// UpdateStatus は現在のステータスがfromの場合のみtoに更新する。
func (r *MemoryBookingRepo) UpdateStatus(_ context.Context, id int64, from, to model.BookingStatus, updatedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byID[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = updatedAt
	return true, nil
}

// MaxID は保存済み予約の最大IDを返す。
func (r *MemoryBookingRepo) MaxID(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var max int64
	for id := range r.byID {
		if id > max {
			max = id
		}
	}
	return max, nil
}

// compile-time interface check
var _ BookingRepository = (*MemoryBookingRepo)(nil)
