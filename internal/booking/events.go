package booking

import (
	"sync"
	"time"

	"github.com/hitoshi/hostelhunt/internal/model"
)

// EventType はStoreが発行するイベントの種別。
type EventType string

const (
	// EventBookingCreated は予約の作成を表す。
	EventBookingCreated EventType = "booking_created"
	// EventStatusChanged は予約ステータスの変更を表す。
	EventStatusChanged EventType = "status_changed"
	// EventFavoriteToggled はお気に入りの追加・解除を表す。
	EventFavoriteToggled EventType = "favorite_toggled"
)

// Event はStoreの状態変更通知。
type Event struct {
	Type EventType
	// Booking は変更後の予約のコピー。EventFavoriteToggled ではnil。
	Booking *model.Booking
	// From は変更前のステータス。EventStatusChanged のみ。
	From model.BookingStatus
	// HostelID と Favorite は EventFavoriteToggled のみ。
	HostelID int64
	Favorite bool
	At       time.Time
}

// Observer はイベントを受け取る関数。
// 状態変更の直後に同期的に呼ばれるため、長時間ブロックしてはならない。
type Observer func(Event)

type subscription struct {
	id int
	fn Observer
}

// observerList は登録順を保つオブザーバーの一覧。
type observerList struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

func (l *observerList) add(fn Observer) func() {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, subscription{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for i, s := range l.subs {
				if s.id == id {
					l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (l *observerList) notify(e Event) {
	l.mu.RLock()
	subs := make([]subscription, len(l.subs))
	copy(subs, l.subs)
	l.mu.RUnlock()

	for _, s := range subs {
		s.fn(e)
	}
}
