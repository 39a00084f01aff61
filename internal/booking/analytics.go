package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/hostelhunt/internal/model"
)

// trendMonths は月別推移に含める月数（当月を含む）。
const trendMonths = 4

// Analytics は予約件数の集計結果。
type Analytics struct {
	TotalBookings  int                         `json:"total_bookings"`
	ActiveBookings int                         `json:"active_bookings"`
	StatusCounts   map[model.BookingStatus]int `json:"status_counts"`
	TopHostel      *TopHostel                  `json:"top_hostel"`
	MonthlyTrend   []MonthlyBookings           `json:"monthly_trend"`
}

// TopHostel は確定・完了済みの予約が最も多いホステル。
type TopHostel struct {
	HostelID int64  `json:"hostel_id"`
	Name     string `json:"name"`
	Bookings int    `json:"bookings"`
}

// MonthlyBookings は予約日の月ごとの予約件数。
type MonthlyBookings struct {
	Month    string `json:"month"` // YYYY-MM
	Label    string `json:"label"` // Jan, Feb, ...
	Bookings int    `json:"bookings"`
}

// Analytics は全予約から件数の集計を作る。
// アクティブな予約はチェックアウト日が今日以降のconfirmed。
// 人気ホステルはconfirmedとcompletedの件数で決め、同数ならIDの小さい方。
func (s *Store) Analytics(ctx context.Context) (*Analytics, error) {
	bookings, err := s.bookings.List(ctx, model.BookingFilter{})
	if err != nil {
		return nil, fmt.Errorf("予約の集計に失敗しました: %w", err)
	}

	now := s.now().UTC()
	today := now.Format(model.DateLayout)

	a := &Analytics{
		TotalBookings: len(bookings),
		StatusCounts:  make(map[model.BookingStatus]int, len(model.AllBookingStatuses)),
		MonthlyTrend:  monthBuckets(now),
	}
	for _, st := range model.AllBookingStatuses {
		a.StatusCounts[st] = 0
	}

	perHostel := make(map[int64]int)
	for _, b := range bookings {
		a.StatusCounts[b.Status]++

		switch b.Status {
		case model.BookingStatusConfirmed:
			if b.CheckOut >= today {
				a.ActiveBookings++
			}
			perHostel[b.HostelID]++
		case model.BookingStatusCompleted:
			perHostel[b.HostelID]++
		}

		for i := range a.MonthlyTrend {
			if strings.HasPrefix(b.BookingDate, a.MonthlyTrend[i].Month) {
				a.MonthlyTrend[i].Bookings++
				break
			}
		}
	}

	for id, n := range perHostel {
		top := a.TopHostel
		if top == nil || n > top.Bookings || (n == top.Bookings && id < top.HostelID) {
			a.TopHostel = &TopHostel{HostelID: id, Bookings: n}
		}
	}
	if a.TopHostel != nil {
		if h := s.catalog.GetByID(a.TopHostel.HostelID); h != nil {
			a.TopHostel.Name = h.Name
		}
	}

	return a, nil
}

// monthBuckets は当月までのtrendMonthsか月分の空の集計枠を古い順に返す。
func monthBuckets(now time.Time) []MonthlyBookings {
	first := time.Date(now.Year(), now.Month()-(trendMonths-1), 1, 0, 0, 0, 0, time.UTC)
	buckets := make([]MonthlyBookings, trendMonths)
	for i := range buckets {
		m := first.AddDate(0, i, 0)
		buckets[i] = MonthlyBookings{Month: m.Format("2006-01"), Label: m.Format("Jan")}
	}
	return buckets
}
