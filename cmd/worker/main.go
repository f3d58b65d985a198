package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/hoaxify/hoaxify-api/internal/app"
	"github.com/hoaxify/hoaxify-api/internal/images"
	"github.com/hoaxify/hoaxify-api/internal/platform/db"
	"github.com/hoaxify/hoaxify-api/internal/users"
	"github.com/hoaxify/hoaxify-api/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	sweeper := &jobs.Sweeper{
		Logger: logger,
		Repo:   users.NewPGRepository(pool),
		Store:  imageStore,
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskImagesSweep, Handler: sweeper.HandleImagesSweep},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "@every 1h", Task: jobs.NewImagesSweepTask()},
		},
	})
	if err != nil {
		logger.Error("configure worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
