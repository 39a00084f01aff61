package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	cfg.MaxRetries = 0

	s, err := NewRedisStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	if _, ok, err := s.Get(ctx, "user"); err != nil || ok {
		t.Fatalf("Get missing = ok:%v err:%v, want ok:false err:nil", ok, err)
	}

	if err := s.Set(ctx, "user", `{"id":1,"email":"a@b.com","name":"John Doe"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := mr.Get("user")
	if err != nil {
		t.Fatalf("miniredis Get: %v", err)
	}
	if got != `{"id":1,"email":"a@b.com","name":"John Doe"}` {
		t.Errorf("stored value = %q", got)
	}

	v, ok, err := s.Get(ctx, "user")
	if err != nil || !ok || v != got {
		t.Errorf("Get = %q ok:%v err:%v", v, ok, err)
	}

	if err := s.Delete(ctx, "user"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mr.Exists("user") {
		t.Error("key should be deleted from redis")
	}
}

func TestRedisStore_Ping(t *testing.T) {
	s, _ := newTestRedisStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNewRedisStore_Unreachable_ReturnsError(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Addr = "127.0.0.1:1"
	cfg.MaxRetries = 0
	cfg.DialTimeout = 200 * time.Millisecond

	_, err := NewRedisStore(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}
