// Package model はドメインモデルを定義する。
package model

import "time"

// DateLayout は予約の日付フィールドの書式。
const DateLayout = "2006-01-02"

// BookingStatus は予約のステータスを表す。
type BookingStatus string

const (
	// BookingStatusPending は確認待ちの予約。
	BookingStatusPending BookingStatus = "pending"
	// BookingStatusConfirmed は確定済みの予約。
	BookingStatusConfirmed BookingStatus = "confirmed"
	// BookingStatusCompleted は宿泊済みの予約。終端状態。
	BookingStatusCompleted BookingStatus = "completed"
	// BookingStatusCancelled はキャンセルされた予約。終端状態。
	BookingStatusCancelled BookingStatus = "cancelled"
)

// AllBookingStatuses は定義済みのステータスを遷移順に並べたもの。
var AllBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

// bookingTransitions は許可されたステータス遷移。
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted},
}

// IsValid はステータスが定義済みの値かを判定する。
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// IsTerminal は終端状態（completed, cancelled）かを判定する。
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CanTransitionTo はsからnextへの遷移が許可されているかを判定する。
// 同一ステータスへの遷移は許可しない。
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses はsから遷移可能なステータスを返す。
// ダッシュボードのアクションボタン表示に使用する。
func (s BookingStatus) NextStatuses() []BookingStatus {
	return append([]BookingStatus(nil), bookingTransitions[s]...)
}

// Booking はホステルの予約を表す。
// 作成後に変更可能なのはStatusのみ。
type Booking struct {
	ID              int64             `json:"id"`
	HostelID        int64             `json:"hostel_id"`
	CheckIn         string            `json:"check_in"`
	CheckOut        string            `json:"check_out"`
	Guests          int               `json:"guests"`
	Room            string            `json:"room,omitempty"`
	GuestName       string            `json:"guest_name,omitempty"`
	GuestEmail      string            `json:"guest_email,omitempty"`
	SpecialRequests string            `json:"special_requests,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
	Status          BookingStatus     `json:"status"`
	BookingDate     string            `json:"booking_date"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Clone はExtraを含めたディープコピーを返す。
func (b *Booking) Clone() *Booking {
	c := *b
	if b.Extra != nil {
		c.Extra = make(map[string]string, len(b.Extra))
		for k, v := range b.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// BookingFilter は予約一覧の絞り込み条件。
// Statusが空の場合は全件を対象とする。
type BookingFilter struct {
	Status BookingStatus
}

// Matches は予約がフィルタ条件に一致するかを判定する。
func (f BookingFilter) Matches(b *Booking) bool {
	return f.Status == "" || b.Status == f.Status
}
