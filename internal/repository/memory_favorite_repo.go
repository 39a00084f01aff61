package repository

import (
	"context"
	"sync"
)

// MemoryFavoriteRepo はプロセス内メモリのお気に入りリポジトリ。
type MemoryFavoriteRepo struct {
	mu    sync.RWMutex
	order []int64
	set   map[int64]struct{}
}

// NewMemoryFavoriteRepo はMemoryFavoriteRepoを生成する。
func NewMemoryFavoriteRepo() *MemoryFavoriteRepo {
	return &MemoryFavoriteRepo{set: make(map[int64]struct{})}
}

// Toggle はhostelIDの所属を反転する。
func (r *MemoryFavoriteRepo) Toggle(_ context.Context, hostelID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.set[hostelID]; ok {
		delete(r.set, hostelID)
		for i, id := range r.order {
			if id == hostelID {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
		return false, nil
	}

	r.set[hostelID] = struct{}{}
	r.order = append(r.order, hostelID)
	return true, nil
}

// List はお気に入りのホステルIDを追加順で返す。
func (r *MemoryFavoriteRepo) List(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]int64{}, r.order...), nil
}

// Contains はhostelIDがお気に入りに含まれるかを返す。
func (r *MemoryFavoriteRepo) Contains(_ context.Context, hostelID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.set[hostelID]
	return ok, nil
}

// compile-time interface check
var _ FavoriteRepository = (*MemoryFavoriteRepo)(nil)
