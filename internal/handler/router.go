package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/hostelhunt/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	CORSAllowedOrigin string
	ClientConfig      middleware.ClientConfig
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	AuthStores        middleware.AuthStoreResolver
	HTTPMetrics       middleware.HTTPMetrics

	// ドメイン
	Catalog  CatalogService
	Bookings BookingService

	// 運用
	HealthChecks   map[string]HealthCheck
	MetricsHandler http.Handler
}

// NewRouter は画面・API・運用エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → ClientIdentity → Logging → Metrics
//	→ RateLimit(General) → AuthStore → CSRF
//
// /health と /metrics はクライアント識別の外に配置する。
// 保護された画面は未ログイン時に /login へリダイレクトし、保護されたAPIは401を返す。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	r.Method(http.MethodGet, "/health", NewHealthHandler(deps.HealthChecks))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hostelHandler := NewHostelHandler(deps.Catalog)
	authHandler := NewAuthHandler()
	bookingHandler := NewBookingHandler(deps.Bookings)
	viewHandler := NewViewHandler(deps.Catalog, deps.Bookings)

	loginLimit := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		loginLimit = deps.RateLimiter.LoginMiddleware()
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Use(middleware.NewClientIdentityMiddleware(deps.ClientConfig))
		r.Use(middleware.NewLoggingMiddleware(logger))
		if deps.HTTPMetrics != nil {
			r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
		}
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}
		r.Use(middleware.NewAuthStoreMiddleware(deps.AuthStores))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// --- 公開画面 ---
		r.Get("/", viewHandler.Home)
		r.Get("/search", viewHandler.Search)
		r.Get("/hostel/{id}", viewHandler.HostelDetail)
		r.Get("/login", viewHandler.Login)
		r.Get("/signup", viewHandler.Signup)

		// --- 保護された画面 ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireUserMiddleware(middleware.GuardRedirect))

			r.Get("/booking/{hostelId}", viewHandler.BookingForm)
			r.Get("/booking/confirmation/{bookingId}", viewHandler.Confirmation)
			r.Get("/dashboard", viewHandler.Dashboard)
			r.Get("/dashboard/favorites", viewHandler.DashboardFavorites)
			r.Get("/dashboard/analytics", viewHandler.DashboardAnalytics)
		})

		r.Route("/api", func(r chi.Router) {
			r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

			r.Get("/hostels", hostelHandler.ListHostels)
			r.Get("/hostels/{id}", hostelHandler.GetHostel)

			r.Route("/auth", func(r chi.Router) {
				r.With(loginLimit).Post("/login", authHandler.Login)
				r.With(loginLimit).Post("/signup", authHandler.Signup)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})

			// --- 保護されたAPI ---
			r.Group(func(r chi.Router) {
				r.Use(middleware.NewRequireUserMiddleware(middleware.GuardJSON))

				r.Route("/bookings", func(r chi.Router) {
					r.Post("/", bookingHandler.CreateBooking)
					r.Get("/", bookingHandler.ListBookings)
					r.Get("/{id}", bookingHandler.GetBooking)
					r.Patch("/{id}/status", bookingHandler.UpdateStatus)
				})

				r.Get("/favorites", bookingHandler.ListFavorites)
				r.Post("/favorites/{hostelId}/toggle", bookingHandler.ToggleFavorite)
			})
		})
	})

	return r
}
