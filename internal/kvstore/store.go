// Package kvstore はAuth Storeが利用する永続キーバリューストアを提供する。
// ブラウザのlocalStorageに相当する同期的なGet/Set/Deleteのみを扱う。
package kvstore

import (
	"context"
	"sync"
)

// Store はキーバリューストアのインターフェース。
type Store interface {
	// Get は指定キーの値を返す。キーが存在しない場合はok=falseを返す。
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set は指定キーに値を上書き保存する。
	Set(ctx context.Context, key, value string) error
	// Delete は指定キーを削除する。存在しない場合もエラーにしない。
	Delete(ctx context.Context, key string) error
}

// MemoryStore はプロセス内メモリのStore実装。
// 開発環境とテストで使用する。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get は指定キーの値を返す。
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set は指定キーに値を保存する。
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Delete は指定キーを削除する。
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len は保存されているキー数を返す。テスト用。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// namespaced はキーにプレフィックスを付与するStoreのラッパー。
type namespaced struct {
	inner  Store
	prefix string
}

// Namespace はキーをprefixで名前空間化したStoreを返す。
// クライアントごとのlocalStorageを1つのバックエンド上に分離するために使う。
func Namespace(inner Store, prefix string) Store {
	return &namespaced{inner: inner, prefix: prefix}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

// compile-time interface checks
var _ Store = (*MemoryStore)(nil)
var _ Store = (*namespaced)(nil)
