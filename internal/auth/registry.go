package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/hostelhunt/internal/kvstore"
	"github.com/hitoshi/hostelhunt/internal/model"
)

// clientEntry はクライアントごとのStoreと最終アクセス時刻を保持する。
type clientEntry struct {
	store      *Store
	lastAccess time.Time
}

// Registry はクライアントIDごとのAuth Storeを管理する。
// ブラウザごとにlocalStorageが分かれるのと同様に、
// 共有のキーバリューストアを "client:<id>:" の名前空間で分割する。
type Registry struct {
	kv        kvstore.Store
	validator EmailValidator
	listener  Listener

	mu      sync.Mutex
	clients map[string]*clientEntry
}

// NewRegistry はRegistryを生成する。
func NewRegistry(kv kvstore.Store, validator EmailValidator, listener Listener) *Registry {
	return &Registry{
		kv:        kv,
		validator: validator,
		listener:  listener,
		clients:   make(map[string]*clientEntry),
	}
}

// For はクライアントIDに対応するStoreを返す。
// 初回アクセス時にStoreを生成し、永続ストアから復元する。
// 保存データの破損はStoreの状態（StateSessionInvalid）で表し、エラーにはしない。
// ストアへのアクセス失敗のみエラーを返す。
func (r *Registry) For(ctx context.Context, clientID string) (*Store, error) {
	if clientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}

	r.mu.Lock()
	entry, ok := r.clients[clientID]
	if !ok {
		ns := kvstore.Namespace(r.kv, "client:"+clientID+":")
		entry = &clientEntry{store: NewStore(ns, r.validator, r.listener)}
		r.clients[clientID] = entry
	}
	entry.lastAccess = time.Now()
	r.mu.Unlock()

	if err := entry.store.Rehydrate(ctx); err != nil && !model.HasCode(err, model.ErrCodeSessionInvalid) {
		return nil, err
	}
	return entry.store, nil
}

// Sweep はmaxIdleより長くアクセスのないStoreをメモリから解放する。
// 状態は永続ストアに残るため、次回アクセス時に再度復元される。
// 解放した件数を返す。
func (r *Registry) Sweep(maxIdle time.Duration) int {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.clients {
		if now.Sub(entry.lastAccess) > maxIdle {
			delete(r.clients, id)
			removed++
		}
	}
	return removed
}

// Len は現在メモリ上にあるStore数を返す。テストおよびメトリクス用。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
