package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresFavoriteRepo はPostgreSQLを使用したお気に入りリポジトリ。
type PostgresFavoriteRepo struct {
	db *sql.DB
}

// NewPostgresFavoriteRepo はPostgresFavoriteRepoを生成する。
func NewPostgresFavoriteRepo(db *sql.DB) *PostgresFavoriteRepo {
	return &PostgresFavoriteRepo{db: db}
}

// Toggle はhostelIDの所属を反転する。
// 削除を試み、削除対象がなければ追加する。同一トランザクション内で実行する。
func (r *PostgresFavoriteRepo) Toggle(ctx context.Context, hostelID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM favorites WHERE hostel_id = $1`,
		hostelID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	added := removed == 0
	if added {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO favorites (hostel_id) VALUES ($1)`,
			hostelID,
		); err != nil {
			return false, fmt.Errorf("failed to insert favorite: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return added, nil
}

// List はお気に入りのホステルIDを追加順で返す。
func (r *PostgresFavoriteRepo) List(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT hostel_id FROM favorites ORDER BY created_at ASC, hostel_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}
	return ids, nil
}

// Contains はhostelIDがお気に入りに含まれるかを返す。
func (r *PostgresFavoriteRepo) Contains(ctx context.Context, hostelID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE hostel_id = $1)`,
		hostelID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

// compile-time interface check
var _ FavoriteRepository = (*PostgresFavoriteRepo)(nil)
