package handler

import (
	"net/http"
	"strings"

	"github.com/hitoshi/hostelhunt/internal/auth"
	"github.com/hitoshi/hostelhunt/internal/middleware"
	"github.com/hitoshi/hostelhunt/internal/model"
)

// AuthHandler はモック認証のHTTPハンドラー。
// 操作対象のAuth StoreはAuthStoreMiddlewareがコンテキストに注入したもの。
type AuthHandler struct{}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// loginRequest はログイン・サインアップリクエストのボディ。
// パスワードと氏名は受け取るが検証しない。
type loginRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Next     string `json:"next"`
}

// authResponse はログイン結果のAPIレスポンス。
type authResponse struct {
	User     *model.User `json:"user"`
	Redirect string      `json:"redirect"`
}

// meResponse は現在の認証状態のAPIレスポンス。
type meResponse struct {
	User  *model.User `json:"user"`
	State auth.State  `json:"state"`
}

// Login はメールアドレスでモックログインする。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	store, ok := requireStore(w, r)
	if !ok {
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := store.Login(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: user, Redirect: safeRedirect(req.Next)})
}

// Signup はサインアップを受け付ける。モック認証のためログインと同じ扱い。
// POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	store, ok := requireStore(w, r)
	if !ok {
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := store.Login(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: user, Redirect: safeRedirect(req.Next)})
}

// Logout はログアウトする。破損したセッションの復旧にも使う。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	store, ok := requireStore(w, r)
	if !ok {
		return
	}

	if err := store.Logout(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のユーザーと読み込み状態を返す。未ログインの場合userはnull。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	store, ok := requireStore(w, r)
	if !ok {
		return
	}

	user, state := store.Current()
	writeJSON(w, http.StatusOK, meResponse{User: user, State: state})
}

// requireStore はコンテキストのAuth Storeを返す。
// 未解決の場合は503 AUTH_LOADINGを書き込んでfalseを返す。
func requireStore(w http.ResponseWriter, r *http.Request) (*auth.Store, bool) {
	store := middleware.AuthStoreFromContext(r.Context())
	if store == nil {
		w.Header().Set("Retry-After", "1")
		middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewAuthLoadingError())
		return nil, false
	}
	return store, true
}

// safeRedirect はログイン後の遷移先を同一オリジンの相対パスに限定する。
func safeRedirect(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
