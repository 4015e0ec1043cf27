package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/CreativeBrief/internal/config"
	"github.com/dharsanguruparan/CreativeBrief/internal/database"
	"github.com/dharsanguruparan/CreativeBrief/internal/notify"
	"github.com/dharsanguruparan/CreativeBrief/internal/repository"
	"github.com/dharsanguruparan/CreativeBrief/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	notifier, err := notify.FromConfig(cfg)
	if err != nil {
		log.Fatalf("init email: %v", err)
	}

	var status worker.StatusRecorder
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		status = repository.NewSubmissionRepository(pool)
	}

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, asynq.Config{
		Concurrency: cfg.Workers,
	})
	processor := worker.NewProcessor(notifier, status)
	mux := processor.Handler()

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	if err := server.Run(mux); err != nil {
		log.Printf("worker stopped: %v", err)
		os.Exit(1)
	}
}
