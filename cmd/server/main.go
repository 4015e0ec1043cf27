// Package main is the entry point for the questionnaire API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/CreativeBrief/internal/api"
	"github.com/dharsanguruparan/CreativeBrief/internal/catalog"
	"github.com/dharsanguruparan/CreativeBrief/internal/config"
	"github.com/dharsanguruparan/CreativeBrief/internal/database"
	"github.com/dharsanguruparan/CreativeBrief/internal/navigation"
	"github.com/dharsanguruparan/CreativeBrief/internal/notify"
	"github.com/dharsanguruparan/CreativeBrief/internal/queue"
	"github.com/dharsanguruparan/CreativeBrief/internal/repository"
	"github.com/dharsanguruparan/CreativeBrief/internal/s3storage"
	"github.com/dharsanguruparan/CreativeBrief/internal/session"
	"github.com/dharsanguruparan/CreativeBrief/internal/signing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cat, err := catalog.LoadOrDefault(cfg.CatalogFile)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	// Each optional collaborator stays a nil interface when unconfigured.
	var storage navigation.Storage
	if cfg.StorageConfigured() {
		store, err := s3storage.New(cfg)
		if err != nil {
			log.Fatalf("init storage: %v", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatalf("ensure bucket: %v", err)
		}
		storage = store
	} else {
		log.Printf("R2 not configured: file uploads will be refused")
	}

	var notifier navigation.Notifier
	switch cfg.NotifyMode {
	case config.NotifyQueue:
		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		notifier = queue.NewNotifier(client)
	default:
		n, err := notify.FromConfig(cfg)
		if err != nil {
			log.Fatalf("init email: %v", err)
		}
		notifier = n
	}

	nav := navigation.NewController(cat, storage, notifier, cfg.R2Bucket)
	var archive api.Archive
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		repo := repository.NewSubmissionRepository(pool)
		nav.WithArchiver(repo)
		archive = repo
	} else if cfg.NotifyMode == config.NotifyQueue {
		log.Printf("DATABASE_URL not set: queued deliveries will not be tracked")
	}

	srv := api.New(cfg, session.NewStore(), nav, signing.NewSigner(cfg.SigningSecret), archive)
	if err := srv.Run(ctx); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
