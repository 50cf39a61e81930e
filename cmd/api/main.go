package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/artifactrepo/internal/artifact"
	"github.com/abduss/artifactrepo/internal/auth"
	"github.com/abduss/artifactrepo/internal/config"
	"github.com/abduss/artifactrepo/internal/logger"
	"github.com/abduss/artifactrepo/internal/server"
	"github.com/abduss/artifactrepo/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := server.Dependencies{Config: cfg}

	var records artifact.RecordStore
	switch cfg.Artifact.RecordBackend {
	case config.RecordBackendPostgres:
		pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logg.Fatal("connect postgres", zap.Error(err))
		}
		defer pool.Close()
		deps.DB = pool
		records = artifact.NewPostgresRecords(pool)
	case config.RecordBackendRedis:
		client, err := storage.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logg.Fatal("connect redis", zap.Error(err))
		}
		defer client.Close()
		deps.Redis = client
		records = artifact.NewRedisRecords(client, cfg.Redis.KeyPrefix)
	default:
		logg.Fatal("unknown record backend", zap.String("backend", cfg.Artifact.RecordBackend))
	}

	var blobs artifact.BlobStore
	switch cfg.Artifact.BlobBackend {
	case config.BlobBackendMinIO:
		client, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			logg.Fatal("connect minio", zap.Error(err))
		}
		if err := storage.EnsureBucket(ctx, client, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
			logg.Fatal("ensure bucket", zap.Error(err))
		}
		deps.ObjectStore = client
		blobs = artifact.NewMinIOStore(client, cfg.MinIO.Bucket)
	case config.BlobBackendLocal:
		store, err := artifact.NewLocalStore(cfg.Local.Dir)
		if err != nil {
			logg.Fatal("init local storage", zap.Error(err))
		}
		blobs = store
	default:
		logg.Fatal("unknown blob backend", zap.String("backend", cfg.Artifact.BlobBackend))
	}

	validator, err := auth.NewValidator(cfg.Auth)
	if err != nil {
		logg.Fatal("init token validator", zap.Error(err))
	}

	gate := artifact.NewGate(records)
	deps.TokenValidator = validator
	deps.ArtifactService = artifact.NewService(records, blobs, gate, cfg.Artifact, logg)

	router := server.NewRouter(deps)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("artifact repo API listening",
			zap.String("address", cfg.Server.Address()),
			zap.String("records", cfg.Artifact.RecordBackend),
			zap.String("blobs", cfg.Artifact.BlobBackend))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("shutting down gracefully...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}
}
