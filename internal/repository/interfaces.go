// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/hostelhunt/internal/model"
)

// BookingRepository は予約データの永続化インターフェース。
type BookingRepository interface {
	// Create は予約を保存する。IDは呼び出し側で採番済みであること。
	Create(ctx context.Context, booking *model.Booking) error

	// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Booking, error)

	// List は条件に一致する予約を作成順で返す。
	List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)

	// UpdateStatus は現在のステータスがfromである場合に限りtoへ更新する。
	// 条件に一致するレコードがなかった場合はfalseを返す。
	UpdateStatus(ctx context.Context, id int64, from, to model.BookingStatus, updatedAt time.Time) (bool, error)

	// MaxID は保存済み予約の最大IDを返す。予約がない場合は0。
	MaxID(ctx context.Context) (int64, error)
}

// FavoriteRepository はお気に入りホステルIDの集合を永続化するインターフェース。
type FavoriteRepository interface {
	// Toggle はhostelIDの所属を反転し、反転後に所属しているかを返す。
	Toggle(ctx context.Context, hostelID int64) (bool, error)

	// List はお気に入りのホステルIDを追加順で返す。
	List(ctx context.Context) ([]int64, error)

	// Contains はhostelIDがお気に入りに含まれるかを返す。
	Contains(ctx context.Context, hostelID int64) (bool, error)
}
