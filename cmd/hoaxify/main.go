package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hoaxify/hoaxify-api/internal/app"
	"github.com/hoaxify/hoaxify-api/internal/auth"
	"github.com/hoaxify/hoaxify-api/internal/i18n"
	"github.com/hoaxify/hoaxify-api/internal/images"
	"github.com/hoaxify/hoaxify-api/internal/platform/cache"
	"github.com/hoaxify/hoaxify-api/internal/platform/db"
	"github.com/hoaxify/hoaxify-api/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(ctx, cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var tokenStore auth.TokenStore
	switch cfg.TokenStore {
	case "redis":
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		tokenStore = auth.NewRedisTokenStore(redisClient)
	default:
		tokenStore = auth.NewMemoryTokenStore()
	}

	var imageStore images.Store
	switch cfg.ImageStorage {
	case "s3":
		imageStore, err = images.NewS3Store(ctx, images.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			KeyPrefix: cfg.S3KeyPrefix,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		imageStore, err = images.NewLocalStore(filepath.Join(cfg.UploadDir, cfg.ProfileDir))
	}
	if err != nil {
		logger.Error("init image storage", slog.Any("error", err))
		os.Exit(1)
	}

	catalog := i18n.NewCatalog()
	userRepo := users.NewPGRepository(pool)

	authService := auth.NewService(userRepo)
	guard := auth.NewGuard(tokenStore, authService, userRepo)
	authHandler := auth.NewHandler(logger, authService, tokenStore, catalog)

	imageManager := images.NewManager(imageStore)
	userService := users.NewService(logger, userRepo, guard, imageManager)
	usersHandler := users.NewHandler(logger, userService, catalog)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		AuthHandler:  authHandler,
		UsersHandler: usersHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
