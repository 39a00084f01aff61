package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hitoshi/hostelhunt/internal/auth"
	"github.com/hitoshi/hostelhunt/internal/model"
)

var (
	authStoreContextKey = contextKey("auth_store")
	userContextKey      = contextKey("user")
)

// LoginPath は未認証の画面アクセスのリダイレクト先。
const LoginPath = "/login"

// AuthStoreResolver はクライアントIDに対応するAuth Storeを返すインターフェース。
// auth.Registryが満たす。
type AuthStoreResolver interface {
	For(ctx context.Context, clientID string) (*auth.Store, error)
}

// NewAuthStoreMiddleware はクライアントのAuth Storeを解決してコンテキストに注入するミドルウェアを返す。
// ClientIdentityMiddlewareの後に配置する。
// 永続ストアへのアクセスに失敗した場合はAuth Storeを注入せずに続行し、
// 判定はガードに任せる。
func NewAuthStoreMiddleware(resolver AuthStoreResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID, err := ClientIDFromContext(r.Context())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			store, err := resolver.For(r.Context(), clientID)
			if err != nil {
				slog.Error("failed to load auth store",
					slog.String("client_id", clientID),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), authStoreContextKey, store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthStoreFromContext はコンテキストのAuth Storeを返す。未解決の場合はnil。
func AuthStoreFromContext(ctx context.Context) *auth.Store {
	store, _ := ctx.Value(authStoreContextKey).(*auth.Store)
	return store
}

// ContextWithAuthStore はコンテキストにAuth Storeを注入する。テスト用。
func ContextWithAuthStore(ctx context.Context, store *auth.Store) context.Context {
	return context.WithValue(ctx, authStoreContextKey, store)
}

// UserFromContext はガードを通過したリクエストのログインユーザーを返す。
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// GuardMode は未認証時の応答方式。
type GuardMode int

const (
	// GuardRedirect は未認証時にログイン画面へリダイレクトする。画面ルート用。
	GuardRedirect GuardMode = iota
	// GuardJSON は未認証時に401のJSONエラーを返す。APIルート用。
	GuardJSON
)

// NewRequireUserMiddleware はログイン済みのリクエストのみを通すガードを返す。
//   - Auth Storeが読み込み中: 503 AUTH_LOADING（保護対象のコンテンツは返さない）
//   - 保存データが破損: API は 401 SESSION_INVALID、画面はログイン画面へリダイレクト
//   - 未ログイン: API は 401 UNAUTHORIZED、画面は /login?next=... へリダイレクト
func NewRequireUserMiddleware(mode GuardMode) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := AuthStoreFromContext(r.Context())
			if store == nil {
				w.Header().Set("Retry-After", "1")
				WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewAuthLoadingError())
				return
			}

			user, state := store.Current()
			switch {
			case state == auth.StateLoading:
				w.Header().Set("Retry-After", "1")
				WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewAuthLoadingError())
				return
			case state == auth.StateSessionInvalid:
				if mode == GuardRedirect {
					redirectToLogin(w, r, "session_invalid")
					return
				}
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewSessionInvalidError())
				return
			case user == nil:
				if mode == GuardRedirect {
					redirectToLogin(w, r, "")
					return
				}
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// redirectToLogin は元のパスをnextに付けてログイン画面へリダイレクトする。
func redirectToLogin(w http.ResponseWriter, r *http.Request, reason string) {
	q := url.Values{}
	q.Set("next", r.URL.RequestURI())
	if reason != "" {
		q.Set("reason", reason)
	}
	http.Redirect(w, r, LoginPath+"?"+q.Encode(), http.StatusFound)
}
