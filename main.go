package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"captionforge/api"
	"captionforge/config"
	"captionforge/queue"
	"captionforge/render"
	"captionforge/storage"
	"captionforge/templates"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "captionforge",
	})

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store templates.Store
	if cfg.RedisAddr != "" {
		store = templates.NewRedisStore(cfg.RedisAddr)
		logger.Info("template registry: redis", "addr", cfg.RedisAddr)
	} else {
		store = templates.NewMemoryStore()
		logger.Info("template registry: in-memory")
	}
	if err := templates.Seed(ctx, store); err != nil {
		logger.Fatal("seed default template", "err", err)
	}

	engine, err := render.NewEngine(store, cfg.TempDir, cfg.FontPath, logger)
	if err != nil {
		logger.Fatal("render engine", "err", err)
	}

	uploader, err := storage.New(ctx, storage.Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Prefix:        cfg.S3Prefix,
		PublicBaseURL: cfg.S3PublicBase,
		UsePathStyle:  cfg.S3UsePathStyle,
	})
	if err != nil {
		logger.Fatal("object storage", "err", err)
	}
	if uploader.Enabled() {
		logger.Info("object storage enabled", "bucket", cfg.S3Bucket)
	}

	if len(cfg.KafkaBrokers) > 0 {
		worker := queue.NewWorker(engine, uploader, logger)
		consumer, err := queue.NewConsumer(queue.ConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
			Handler: worker.Handler(),
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal("kafka consumer", "err", err)
		}
		if err := consumer.Start(ctx); err != nil {
			logger.Fatal("kafka consumer", "err", err)
		}
		defer consumer.Close()
	}

	server := api.NewServer(engine, store, uploader, cfg.TempDir, logger)
	addr := ":" + cfg.Port
	logger.Info("listening", "addr", addr)

	srv := &http.Server{Addr: addr, Handler: server.Router()}
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		_ = srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", "err", err)
	}
}
