package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hitoshi/hostelhunt/internal/model"
)

// PostgresBookingRepo はPostgreSQLを使用した予約リポジトリ。
type PostgresBookingRepo struct {
	db *sql.DB
}

// NewPostgresBookingRepo はPostgresBookingRepoを生成する。
func NewPostgresBookingRepo(db *sql.DB) *PostgresBookingRepo {
	return &PostgresBookingRepo{db: db}
}

const bookingColumns = `id, hostel_id, check_in, check_out, guests, room, guest_name, guest_email,
	special_requests, extra, status, booking_date, updated_at`

// Create は予約を保存する。
func (r *PostgresBookingRepo) Create(ctx context.Context, b *model.Booking) error {
	extra, err := encodeExtra(b.Extra)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.HostelID, b.CheckIn, b.CheckOut, b.Guests, b.Room, b.GuestName, b.GuestEmail,
		b.SpecialRequests, extra, string(b.Status), b.BookingDate, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
func (r *PostgresBookingRepo) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`,
		id,
	)

	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return b, nil
}

// List は条件に一致する予約を作成順（ID昇順）で返す。
func (r *PostgresBookingRepo) List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	var args []interface{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatus は現在のステータスがfromの場合のみtoに更新する。
func (r *PostgresBookingRepo) UpdateStatus(ctx context.Context, id int64, from, to model.BookingStatus, updatedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		string(to), updatedAt, id, string(from),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// MaxID は保存済み予約の最大IDを返す。
func (r *PostgresBookingRepo) MaxID(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM bookings`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to get max booking ID: %w", err)
	}
	return max, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b      model.Booking
		status string
		extra  []byte
	)
	if err := s.Scan(
		&b.ID, &b.HostelID, &b.CheckIn, &b.CheckOut, &b.Guests, &b.Room, &b.GuestName, &b.GuestEmail,
		&b.SpecialRequests, &extra, &status, &b.BookingDate, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &b.Extra); err != nil {
			return nil, fmt.Errorf("invalid extra column: %w", err)
		}
	}
	return &b, nil
}

// encodeExtra はExtraをJSONB列に渡す文字列にエンコードする。
// lib/pqは[]byteをbyteaとして送るため文字列で渡す。
func encodeExtra(extra map[string]string) (string, error) {
	if len(extra) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("failed to encode extra fields: %w", err)
	}
	return string(data), nil
}

// compile-time interface check
var _ BookingRepository = (*PostgresBookingRepo)(nil)
