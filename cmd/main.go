package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Dosada05/league-portal/brackets"
	"github.com/Dosada05/league-portal/broadcast"
	"github.com/Dosada05/league-portal/config"
	"github.com/Dosada05/league-portal/db"
	"github.com/Dosada05/league-portal/handlers"
	"github.com/Dosada05/league-portal/logging"
	"github.com/Dosada05/league-portal/repositories"
	api "github.com/Dosada05/league-portal/routes"
	"github.com/Dosada05/league-portal/services"
	"github.com/Dosada05/league-portal/storage"
	"github.com/Dosada05/league-portal/store"
	"github.com/Dosada05/league-portal/supervisor"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Настройка логгера
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Bool("persistent", cfg.DatabaseURL != ""))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Хранилище: в памяти, с PostgreSQL при наличии DATABASE_URL
	var storeOpts []store.Option
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		version, err := db.Migrate(dbConn)
		if err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("database ready", slog.Uint64("schema_version", uint64(version)))
		storeOpts = append(storeOpts, store.WithPersister(repositories.NewPostgresEntityRepository(dbConn)))
	}

	entityStore := store.New(logger, storeOpts...)
	if err := entityStore.Load(ctx); err != nil {
		return fmt.Errorf("failed to load entities: %w", err)
	}

	// Загрузчик файлов: Cloudflare R2 или локальный каталог
	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		return err
	}

	hub := broadcast.NewHub(logger, broadcast.WithEpoch(entityStore.Epoch()))
	notifier := services.NewNotifier(entityStore, hub, logger)

	clipService := services.NewClipService(entityStore, notifier, uploader, logger)
	authService := services.NewAuthService(cfg.AdminJWTSecret, cfg.AdminPasswordHash)
	if !authService.Enabled() {
		logger.Warn("ADMIN_JWT_SECRET is not set, mutating routes are open")
	}

	h := api.Handlers{
		Team:      handlers.NewTeamHandler(services.NewTeamService(entityStore, notifier, uploader, logger)),
		Club:      handlers.NewClubHandler(services.NewClubService(entityStore, notifier, uploader, logger)),
		Player:    handlers.NewPlayerHandler(services.NewPlayerService(entityStore, notifier, logger)),
		Match:     handlers.NewMatchHandler(services.NewMatchService(entityStore, notifier, brackets.NewRoundRobinGenerator(), logger)),
		Clip:      handlers.NewClipHandler(clipService),
		Standings: handlers.NewStandingsHandler(services.NewStandingsService(entityStore, cfg.Settings())),
		Playoff:   handlers.NewPlayoffHandler(services.NewPlayoffService(entityStore, notifier, brackets.NewSingleEliminationGenerator(), logger)),
		Admin:     handlers.NewAdminHandler(services.NewAdminService(entityStore, notifier, logger), authService, logger),
		Dashboard: handlers.NewDashboardHandler(services.NewDashboardService(entityStore, hub)),
		WebSocket: handlers.NewWebSocketHandler(hub, clipService, cfg.CORSAllowedOrigins, logger),
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, h, authService, api.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		CounterRateLimit: cfg.RateLimitCounters,
		RequestTimeout:   cfg.RequestTimeout,
		Epoch:            entityStore.Epoch(),
		UploadDir:        localUploadDir(cfg),
		Logger:           logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	tree := supervisor.NewTree("league-portal", logger, supervisor.TreeConfig{ShutdownTimeout: cfg.ShutdownTimeout})
	tree.AddCore(supervisor.NewFuncService("broadcast-hub", hub.Run))
	tree.AddAPI(supervisor.NewHTTPServerService(server, cfg.ShutdownTimeout))

	logger.Info("starting server", slog.String("address", server.Addr))
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("supervisor stopped: %w", err)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		logger.Warn("services did not stop in time", slog.Int("count", len(report)))
	}
	logger.Info("application exited")
	return nil
}

func newUploader(ctx context.Context, cfg *config.Config) (storage.FileUploader, error) {
	if r2 := cfg.R2(); r2.Complete() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, r2)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		slog.Info("Cloudflare R2 uploader initialized", slog.String("bucket", r2.BucketName))
		return uploader, nil
	}
	uploader, err := storage.NewLocalUploader(cfg.UploadDir, "/uploads")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local uploader: %w", err)
	}
	slog.Info("local uploader initialized", slog.String("dir", cfg.UploadDir))
	return uploader, nil
}

// localUploadDir is empty when files live in R2, so nothing is served locally.
func localUploadDir(cfg *config.Config) string {
	if cfg.R2().Complete() {
		return ""
	}
	return cfg.UploadDir
}
