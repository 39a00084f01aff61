package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/hostelhunt/internal/kvstore"
)

func TestRegistry_For_SameClientReturnsSameStore(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(kvstore.NewMemoryStore(), nil, nil)

	a1, err := r.For(ctx, "client-a")
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	a2, _ := r.For(ctx, "client-a")
	if a1 != a2 {
		t.Error("expected the same store for the same client")
	}
	if _, state := a1.Current(); state != StateReady {
		t.Errorf("state = %q, want %q", state, StateReady)
	}
}

func TestRegistry_For_IsolatesClients(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryStore()
	r := NewRegistry(backend, nil, nil)

	a, _ := r.For(ctx, "client-a")
	if _, err := a.Login(ctx, "a@b.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	b, _ := r.For(ctx, "client-b")
	if user, _ := b.Current(); user != nil {
		t.Errorf("client-b user = %+v, want nil", user)
	}

	if _, ok, _ := backend.Get(ctx, "client:client-a:user"); !ok {
		t.Error("expected namespaced key client:client-a:user")
	}
}

func TestRegistry_For_MalformedData_ReturnsStoreInInvalidState(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryStore()
	backend.Set(ctx, "client:c:user", "garbage")
	r := NewRegistry(backend, nil, nil)

	s, err := r.For(ctx, "c")
	if err != nil {
		t.Fatalf("For should not fail for malformed data: %v", err)
	}
	if _, state := s.Current(); state != StateSessionInvalid {
		t.Errorf("state = %q, want %q", state, StateSessionInvalid)
	}
}

func TestRegistry_For_StorageError_ReturnsError(t *testing.T) {
	kv := &mockKV{
		getFn: func(ctx context.Context, key string) (string, bool, error) {
			return "", false, errors.New("down")
		},
	}
	r := NewRegistry(kv, nil, nil)

	if _, err := r.For(context.Background(), "c"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRegistry_For_EmptyClientID_ReturnsError(t *testing.T) {
	r := NewRegistry(kvstore.NewMemoryStore(), nil, nil)
	if _, err := r.For(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty client ID")
	}
}

func TestRegistry_Sweep_RemovesIdleStoresButKeepsPersistedUser(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryStore()
	r := NewRegistry(backend, nil, nil)

	s, _ := r.For(ctx, "c")
	s.Login(ctx, "a@b.com")

	time.Sleep(5 * time.Millisecond)
	if removed := r.Sweep(time.Millisecond); removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}

	again, _ := r.For(ctx, "c")
	user, _ := again.Current()
	if user == nil || user.Email != "a@b.com" {
		t.Errorf("rehydrated user = %+v, want a@b.com", user)
	}
}
