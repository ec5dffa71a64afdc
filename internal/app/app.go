package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/ideaswipe/internal/auth"
	"github.com/hitoshi/ideaswipe/internal/config"
	"github.com/hitoshi/ideaswipe/internal/database"
	"github.com/hitoshi/ideaswipe/internal/feed"
	"github.com/hitoshi/ideaswipe/internal/handler"
	"github.com/hitoshi/ideaswipe/internal/idea"
	"github.com/hitoshi/ideaswipe/internal/interaction"
	"github.com/hitoshi/ideaswipe/internal/logger"
	"github.com/hitoshi/ideaswipe/internal/metrics"
	"github.com/hitoshi/ideaswipe/internal/middleware"
	"github.com/hitoshi/ideaswipe/internal/moderation"
	"github.com/hitoshi/ideaswipe/internal/repository"
	"github.com/hitoshi/ideaswipe/internal/security"
	"github.com/hitoshi/ideaswipe/internal/settings"
	"github.com/hitoshi/ideaswipe/internal/user"
	"github.com/hitoshi/ideaswipe/internal/worker/cleanup"
	"github.com/hitoshi/ideaswipe/internal/worker/review"
)

// sessionCleanupInterval は期限切れセッション削除の実行間隔。
const sessionCleanupInterval = time.Hour

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

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
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// 審査ディスパッチャとセッションクリーンアップもバックグラウンドで動かすため、
// このモード単体でアプリケーションとして完結する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	ideaRepo := repository.NewPostgresIdeaRepo(db)
	interactionRepo := repository.NewPostgresInteractionRepo(db)
	settingsRepo := repository.NewPostgresSettingsRepo(db)

	// 3. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	// 4. メトリクスの初期化
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	// 5. ドメインサービスの初期化
	authService := auth.NewService(
		userRepo, sessionRepo,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	ideaService := idea.NewService(ideaRepo, settingsRepo, sanitizer, nil)

	interactionService := interaction.NewService(interactionRepo, ideaRepo)
	feedService := feed.NewService(ideaRepo, interactionRepo, interactionService)

	userService := user.NewService(userRepo, sessionRepo, ideaRepo)
	settingsService := settings.NewService(settingsRepo)

	// 6. 審査ディスパッチャの初期化
	// 審査APIへの通信はSSRFガード付きHTTPクライアントを使用する
	if err := ssrfGuard.ValidateEndpoint(cfg.ModerationEndpoint); err != nil {
		return fmt.Errorf("invalid moderation endpoint: %w", err)
	}
	factory := moderation.NewFactory(
		ssrfGuard.NewSafeClient(cfg.ReviewTimeout),
		slog.Default(),
		moderation.FactoryConfig{
			Endpoint:    cfg.ModerationEndpoint,
			Model:       cfg.ModerationModel,
			RuleLatency: cfg.ReviewLatency,
		},
	)
	dispatcher := review.NewDispatcher(
		ideaRepo, settingsRepo, factory, ideaService,
		collector, slog.Default(), cfg.ReviewTimeout, cfg.ReviewMaxConcurrent,
	)
	ideaService.SetDispatcher(dispatcher)

	// 7. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitSubmit),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		UserFinder:        userRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		IdeaService: ideaService,
		FeedService: feedService,

		UserService:     userService,
		SettingsService: settingsService,

		Collector: collector,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.Handle("/", handler.NewRouter(deps))

	// 8. バックグラウンドジョブの起動
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go dispatcher.Start(ctx, cfg.ReviewSweepInterval)

	cleanupJob := cleanup.NewSessionCleanupJob(sessionRepo, slog.Default())
	go cleanupJob.Start(ctx, sessionCleanupInterval)

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	// バックグラウンドジョブを停止してからHTTPサーバーを閉じる
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// APIサーバーと審査処理を分離してデプロイする構成向けに、
// 審査ディスパッチャ（定期スイープ駆動）とセッションクリーンアップのみを動かす。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. リポジトリの初期化
	sessionRepo := repository.NewPostgresSessionRepo(db)
	ideaRepo := repository.NewPostgresIdeaRepo(db)
	settingsRepo := repository.NewPostgresSettingsRepo(db)

	// 3. 審査ディスパッチャの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	ideaService := idea.NewService(ideaRepo, settingsRepo, sanitizer, nil)

	if err := ssrfGuard.ValidateEndpoint(cfg.ModerationEndpoint); err != nil {
		return fmt.Errorf("invalid moderation endpoint: %w", err)
	}
	factory := moderation.NewFactory(
		ssrfGuard.NewSafeClient(cfg.ReviewTimeout),
		slog.Default(),
		moderation.FactoryConfig{
			Endpoint:    cfg.ModerationEndpoint,
			Model:       cfg.ModerationModel,
			RuleLatency: cfg.ReviewLatency,
		},
	)
	dispatcher := review.NewDispatcher(
		ideaRepo, settingsRepo, factory, ideaService,
		collector, slog.Default(), cfg.ReviewTimeout, cfg.ReviewMaxConcurrent,
	)

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("sweep_interval", cfg.ReviewSweepInterval),
		slog.Int("max_concurrent", cfg.ReviewMaxConcurrent),
	)

	// セッションクリーンアップをバックグラウンドで起動
	cleanupJob := cleanup.NewSessionCleanupJob(sessionRepo, slog.Default())
	go cleanupJob.Start(ctx, sessionCleanupInterval)

	// 審査ディスパッチャをメインgoroutineで実行（ブロッキング）
	dispatcher.Start(ctx, cfg.ReviewSweepInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションとシードデータの投入を実行する。
// すべての未適用マイグレーションを順番に適用した後、
// 管理者アカウントとサンプルアイデアを投入する（冪等）。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	userRepo := repository.NewPostgresUserRepo(db)
	ideaRepo := repository.NewPostgresIdeaRepo(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.Seed(ctx, userRepo, ideaRepo); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	slog.Info("seed data applied successfully")
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
