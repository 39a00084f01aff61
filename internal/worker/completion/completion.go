// Package completion は宿泊期間を終えた予約を完了済みにする定期ジョブを提供する。
// 遷移はBooking StoreのUpdateStatusを経由するため、ステータス遷移の制約はそのまま適用される。
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/hostelhunt/internal/model"
)

// BookingStore はジョブが使うBooking Storeの操作。
type BookingStore interface {
	ListBookings(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id int64, next model.BookingStatus) (*model.Booking, error)
}

// Recorder は完了件数の記録インターフェース。
type Recorder interface {
	RecordBookingsCompleted(count int)
}

// Job はチェックアウト日を過ぎたconfirmedの予約をcompletedにするジョブ。
// 何度実行しても結果は変わらない。
type Job struct {
	store    BookingStore
	recorder Recorder
	logger   *slog.Logger

	// Now は現在時刻を返す。テストで差し替える。
	Now func() time.Time
}

// NewJob はJobを生成する。recorderはnilでもよい。
func NewJob(store BookingStore, recorder Recorder, logger *slog.Logger) *Job {
	return &Job{
		store:    store,
		recorder: recorder,
		logger:   logger,
		Now:      time.Now,
	}
}

// Run はチェックアウト日が今日（UTC）より前のconfirmedの予約をcompletedにし、件数を返す。
// 同時に他の経路で遷移済みだった予約はスキップする。
// 個々の更新失敗は残りの処理を止めず、まとめてエラーとして返す。
func (j *Job) Run(ctx context.Context) (int, error) {
	start := time.Now()
	today := j.Now().UTC().Format(model.DateLayout)

	bookings, err := j.store.ListBookings(ctx, model.BookingFilter{Status: model.BookingStatusConfirmed})
	if err != nil {
		j.logger.Error("予約完了ジョブの対象取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("予約完了ジョブの対象取得に失敗: %w", err)
	}

	completed := 0
	var errs []error
	for _, b := range bookings {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if !checkedOut(b.CheckOut, today) {
			continue
		}

		updated, err := j.store.UpdateStatus(ctx, b.ID, model.BookingStatusCompleted)
		switch {
		case model.HasCode(err, model.ErrCodeInvalidTransition):
			j.logger.Info("予約は既に遷移済みのためスキップしました",
				slog.Int64("booking_id", b.ID),
			)
		case err != nil:
			j.logger.Error("予約の完了処理に失敗しました",
				slog.Int64("booking_id", b.ID),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("booking %d: %w", b.ID, err))
		case updated != nil:
			completed++
		}
	}

	if j.recorder != nil && completed > 0 {
		j.recorder.RecordBookingsCompleted(completed)
	}

	j.logger.Info("予約完了ジョブが完了しました",
		slog.Int("completed_count", completed),
		slog.Int("candidate_count", len(bookings)),
		slog.String("today", today),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return completed, errors.Join(errs...)
}

// Start はintervalごとにRunを実行する。起動直後に1回実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("予約完了ジョブを開始しました",
		slog.Duration("interval", interval),
	)

	j.runLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("予約完了ジョブを停止しました")
			return
		case <-ticker.C:
			j.runLogged(ctx)
		}
	}
}

func (j *Job) runLogged(ctx context.Context) {
	if _, err := j.Run(ctx); err != nil {
		j.logger.Error("予約完了ジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}
}

// checkedOut はチェックアウト日がtodayより前かを判定する。
// 日付として解釈できない値は対象外とする。
func checkedOut(checkOut, today string) bool {
	co, err := time.Parse(model.DateLayout, checkOut)
	if err != nil {
		return false
	}
	t, err := time.Parse(model.DateLayout, today)
	if err != nil {
		return false
	}
	return co.Before(t)
}
