// Package auth はモック認証のAuth Storeを提供する。
// ログイン中のユーザーを1件だけ保持し、永続キーバリューストアの
// 単一キーにJSONとしてミラーする。
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hitoshi/hostelhunt/internal/kvstore"
	"github.com/hitoshi/hostelhunt/internal/model"
)

// UserKey はログインユーザーを保存するキー名。
const UserKey = "user"

// State はAuth Storeの読み込み状態を表す。
type State string

const (
	// StateLoading は永続ストアからの復元が完了していない状態。
	// この間は認証が必要なコンテンツを返してはならない。
	StateLoading State = "loading"
	// StateReady は復元済みの状態。ユーザーの有無は問わない。
	StateReady State = "ready"
	// StateSessionInvalid は保存済みデータが破損していた状態。
	// Logout または Login で StateReady に戻る。
	StateSessionInvalid State = "session_invalid"
)

// EmailValidator はログイン時のメールアドレス検証インターフェース。
type EmailValidator interface {
	Email(email string) error
}

// Listener はログイン・ログアウトの通知を受け取るインターフェース。
type Listener interface {
	OnLogin(user *model.User)
	OnLogout()
}

// Store はクライアント1つ分の認証状態を保持する。
type Store struct {
	kv        kvstore.Store
	validator EmailValidator
	listener  Listener

	mu     sync.RWMutex
	user   *model.User
	state  State
	loaded bool
}

// NewStore はStoreを生成する。生成直後はStateLoading。
// validatorとlistenerはnilでもよい。
func NewStore(kv kvstore.Store, validator EmailValidator, listener Listener) *Store {
	return &Store{
		kv:        kv,
		validator: validator,
		listener:  listener,
		state:     StateLoading,
	}
}

// Rehydrate は永続ストアからログインユーザーを復元する。
// 復元が完了するのはプロセス中で1回だけで、2回目以降は何もしない。
// ストアへのアクセス自体が失敗した場合はStateLoadingのまま次回の呼び出しで再試行する。
// 保存データが破損している場合はStateSessionInvalidにしてSESSION_INVALIDを返す。
func (s *Store) Rehydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	raw, ok, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		return fmt.Errorf("failed to read persisted user: %w", err)
	}
	s.loaded = true

	if !ok {
		s.user = nil
		s.state = StateReady
		return nil
	}

	user, err := decodeUser(raw)
	if err != nil {
		slog.Warn("persisted user is malformed",
			slog.String("error", err.Error()),
		)
		s.user = nil
		s.state = StateSessionInvalid
		return model.NewSessionInvalidError()
	}

	s.user = user
	s.state = StateReady
	return nil
}

// Login はメールアドレスからモックユーザーを生成し、永続化してカレントユーザーにする。
// 資格情報の検証は行わない。既存の保存データは上書きする。
func (s *Store) Login(ctx context.Context, email string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if s.validator != nil {
		if err := s.validator.Email(email); err != nil {
			return nil, err
		}
	}

	user := model.NewMockUser(email)
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}

	s.mu.Lock()
	if err := s.kv.Set(ctx, UserKey, string(data)); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}
	s.user = user
	s.state = StateReady
	s.loaded = true
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.OnLogin(user)
	}

	c := *user
	return &c, nil
}

// Logout は永続化されたユーザーを削除し、カレントユーザーを破棄する。
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	if err := s.kv.Delete(ctx, UserKey); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to delete persisted user: %w", err)
	}
	s.user = nil
	s.state = StateReady
	s.loaded = true
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.OnLogout()
	}
	return nil
}

// Current はカレントユーザーのコピーと読み込み状態を返す。
// 未ログインの場合ユーザーはnil。
func (s *Store) Current() (*model.User, State) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil, s.state
	}
	c := *s.user
	return &c, s.state
}

// decodeUser は保存データをUserにデコードする。
// IDまたはEmailが欠けている場合は破損とみなす。
func decodeUser(raw string) (*model.User, error) {
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if user.ID == 0 || user.Email == "" {
		return nil, fmt.Errorf("missing id or email")
	}
	return &user, nil
}
