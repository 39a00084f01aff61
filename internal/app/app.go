package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/hostelhunt/internal/auth"
	"github.com/hitoshi/hostelhunt/internal/booking"
	"github.com/hitoshi/hostelhunt/internal/catalog"
	"github.com/hitoshi/hostelhunt/internal/config"
	"github.com/hitoshi/hostelhunt/internal/database"
	"github.com/hitoshi/hostelhunt/internal/handler"
	"github.com/hitoshi/hostelhunt/internal/kvstore"
	"github.com/hitoshi/hostelhunt/internal/logger"
	"github.com/hitoshi/hostelhunt/internal/metrics"
	"github.com/hitoshi/hostelhunt/internal/middleware"
	"github.com/hitoshi/hostelhunt/internal/model"
	"github.com/hitoshi/hostelhunt/internal/repository"
	"github.com/hitoshi/hostelhunt/internal/security"
	"github.com/hitoshi/hostelhunt/internal/validation"
	"github.com/hitoshi/hostelhunt/internal/worker/completion"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// startupTimeout は起動時の外部依存（DB、Redis、カタログ取得）の待ち時間の上限。
	startupTimeout = 30 * time.Second
	// authStoreIdleTTL はアクセスのないAuth Storeをメモリから解放するまでの時間。
	authStoreIdleTTL = time.Hour
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込んだ後、LOG_LEVELでログを再設定する。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("storage_backend", cfg.StorageBackend),
		slog.String("kv_backend", cfg.KVBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandWorker:
		return runWorker(ctx, cfg)
	case CommandMigrate:
		return runMigrate(cfg, ParseMigrateDirection(args))
	default:
		return runServe(ctx, cfg)
	}
}

// components は起動モード間で共有するワイヤリング済みのコンポーネント。
type components struct {
	catalog      *catalog.Catalog
	bookings     *booking.Store
	kv           kvstore.Store
	validator    *validation.Validator
	collector    *metrics.Collector
	promRegistry *prometheus.Registry
	healthChecks map[string]handler.HealthCheck
	closers      []func() error
}

// Close は開いた接続をすべて閉じる。
func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			slog.Warn("failed to close resource", slog.String("error", err.Error()))
		}
	}
}

// buildComponents は設定に従ってカタログ、リポジトリ、Booking Store、キーバリューストアを組み立てる。
func buildComponents(ctx context.Context, cfg *config.Config) (_ *components, err error) {
	c := &components{
		validator:    validation.New(),
		promRegistry: prometheus.NewRegistry(),
		healthChecks: map[string]handler.HealthCheck{},
	}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	c.promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.collector = metrics.NewCollector(c.promRegistry)

	// 1. カタログ
	c.catalog, err = loadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.collector.SetCatalogSize(c.catalog.Len())

	// 2. 予約・お気に入りのリポジトリ
	bookingRepo, favoriteRepo, err := c.openRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// 3. Auth Storeの永続化先
	if c.kv, err = c.openKVStore(ctx, cfg); err != nil {
		return nil, err
	}

	// 4. Booking Store
	c.bookings, err = booking.NewStore(ctx, booking.Dependencies{
		Catalog:   c.catalog,
		Bookings:  bookingRepo,
		Favorites: favoriteRepo,
		Validator: c.validator,
		Sanitizer: security.NewTextSanitizer(),
	}, booking.Options{InitialStatus: model.BookingStatus(cfg.BookingInitialStatus)})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking store: %w", err)
	}
	c.bookings.Subscribe(c.collector.ObserveBookingEvent)

	if cfg.SeedDemoData {
		if _, err := c.bookings.SeedDemoData(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return c, nil
}

// loadCatalog はCATALOG_URLが設定されていればSSRF防止付きクライアントで取得し、
// そうでなければ組み込みのホステル一覧を使う。取得に失敗した場合も組み込みの一覧で起動する。
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogURL != "" {
		guard := security.NewURLGuard()
		loader := catalog.NewLoader(guard.Client(cfg.CatalogFetchTimeout), guard, cfg.CatalogMaxSize)

		cat, err := loader.Fetch(ctx, cfg.CatalogURL)
		if err == nil {
			slog.Info("catalog loaded from URL", slog.Int("hostels", cat.Len()))
			return cat, nil
		}
		slog.Warn("failed to load catalog from URL, falling back to built-in catalog",
			slog.String("error", err.Error()),
		)
	}

	cat, err := catalog.New(catalog.Fixture())
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	return cat, nil
}

func (c *components) openRepositories(ctx context.Context, cfg *config.Config) (repository.BookingRepository, repository.FavoriteRepository, error) {
	if cfg.StorageBackend != config.BackendPostgres {
		return repository.NewMemoryBookingRepo(), repository.NewMemoryFavoriteRepo(), nil
	}

	db, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	c.closers = append(c.closers, db.Close)
	c.healthChecks["database"] = db.PingContext

	return repository.NewPostgresBookingRepo(db), repository.NewPostgresFavoriteRepo(db), nil
}

func (c *components) openKVStore(ctx context.Context, cfg *config.Config) (kvstore.Store, error) {
	if cfg.KVBackend != config.BackendRedis {
		return kvstore.NewMemoryStore(), nil
	}

	redisCfg := kvstore.DefaultRedisConfig()
	redisCfg.Addr = cfg.RedisAddr
	redisCfg.Password = cfg.RedisPassword
	redisCfg.DB = cfg.RedisDB

	store, err := kvstore.NewRedisStore(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	slog.Info("redis connection established", slog.String("addr", cfg.RedisAddr))
	c.closers = append(c.closers, store.Close)
	c.healthChecks["redis"] = store.Ping
	return store, nil
}

func openDatabase(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := database.Open(databaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Ping(ctx, db, startupTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connection established")
	return db, nil
}

// newRouter はコンポーネントからHTTPルーターを組み立てる。
func newRouter(cfg *config.Config, c *components, registry *auth.Registry, limiter *middleware.RateLimiter) http.Handler {
	return handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		ClientConfig: middleware.ClientConfig{
			MaxAge:       cfg.ClientCookieMaxAge,
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter:    limiter,
		AuthStores:     registry,
		HTTPMetrics:    c.collector,
		Catalog:        c.catalog,
		Bookings:       c.bookings,
		HealthChecks:   c.healthChecks,
		MetricsHandler: metrics.Handler(c.promRegistry),
	})
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーと予約完了ジョブを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	c, err := buildComponents(startCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer c.Close()

	registry := auth.NewRegistry(c.kv, c.validator, c.collector)
	limiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitLogin))
	defer limiter.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      newRouter(cfg, c, registry, limiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	job := completion.NewJob(c.bookings, c.collector, slog.Default())
	go job.Start(ctx, cfg.CompletionInterval)
	go sweepAuthStores(ctx, registry, authStoreIdleTTL)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// sweepAuthStores はアクセスのないAuth Storeを定期的にメモリから解放する。
func sweepAuthStores(ctx context.Context, registry *auth.Registry, maxIdle time.Duration) {
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Sweep(maxIdle); n > 0 {
				slog.Debug("idle auth stores released",
					slog.Int("released", n),
					slog.Int("remaining", registry.Len()),
				)
			}
		}
	}
}

// runWorker はワーカーモードで起動する。
// 予約完了ジョブのみを実行する。予約はプロセス間で共有する必要があるため、PostgreSQLが必須。
func runWorker(ctx context.Context, cfg *config.Config) error {
	if cfg.StorageBackend != config.BackendPostgres {
		return fmt.Errorf("worker requires STORAGE_BACKEND=%s", config.BackendPostgres)
	}

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	c, err := buildComponents(startCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer c.Close()

	slog.Info("worker starting", slog.Duration("completion_interval", cfg.CompletionInterval))

	job := completion.NewJob(c.bookings, c.collector, slog.Default())
	job.Start(ctx, cfg.CompletionInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// upは未適用のマイグレーションをすべて適用し、downは直近の1つを戻す。
func runMigrate(cfg *config.Config, direction MigrateDirection) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("migrate requires DATABASE_URL")
	}

	slog.Info("running database migrations",
		slog.String("direction", string(direction)),
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	var (
		version uint
		err     error
	)
	if direction == MigrateDown {
		version, err = database.RollbackMigration(cfg.DatabaseURL)
	} else {
		version, err = database.RunMigrations(cfg.DatabaseURL)
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
