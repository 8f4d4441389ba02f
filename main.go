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

	"github.com/franclarke/multidub-ai/api"
	"github.com/franclarke/multidub-ai/config"
	"github.com/franclarke/multidub-ai/dispatcher"
	"github.com/franclarke/multidub-ai/logger"
	"github.com/franclarke/multidub-ai/media"
	"github.com/franclarke/multidub-ai/metrics"
	"github.com/franclarke/multidub-ai/orchestrator"
	"github.com/franclarke/multidub-ai/pipeline"
	"github.com/franclarke/multidub-ai/providers"
	"github.com/franclarke/multidub-ai/queue"
	"github.com/franclarke/multidub-ai/storage"
	"github.com/franclarke/multidub-ai/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	objects, err := buildObjectStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}
	repo, err := buildRepository(cfg)
	if err != nil {
		return fmt.Errorf("repository: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	defer q.Close()

	tools := media.NewFFmpeg(log)

	speech := &providers.SpeechRouter{
		ElevenLabs: providers.NewElevenLabs(cfg.ElevenLabsAPIKey, tools.MeasureDuration),
	}
	if cfg.GoogleAPIKey != "" {
		google, err := providers.NewGoogleTTS(ctx, cfg.GoogleAPIKey, tools.MeasureDuration)
		if err != nil {
			return fmt.Errorf("google tts: %w", err)
		}
		speech.Google = google
	}

	met := metrics.New()

	runner := pipeline.NewRunner(pipeline.Deps{
		Repo:        repo,
		Objects:     objects,
		Media:       tools,
		Transcriber: providers.NewWhisper(cfg.OpenAIAPIKey),
		Translator:  providers.NewCohere(cfg.CohereAPIKey, cfg.CohereModel),
		Speech:      speech,
		Log:         log,
		Metrics:     met,
		WorkDir:     cfg.WorkDir,
		MaxAttempts: cfg.MaxStageAttempts,
	})

	disp := &dispatcher.Dispatcher{
		Queue:   q,
		Runner:  runner,
		Log:     log,
		Metrics: met,
		Workers: cfg.WorkerCount,
	}

	orc := &orchestrator.Orchestrator{
		Repo:       repo,
		Objects:    objects,
		Dispatcher: disp,
		Log:        log,
		URLTTL:     cfg.SignedURLTTL,
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(orc, met),
	}

	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		disp.Run(ctx)
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	log.Info("dubbing service started",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"queue_backend", cfg.QueueBackend,
		"store_backend", cfg.StoreBackend,
	)

	<-ctx.Done()
	log.Info("shutdown signal received, draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", "error", err)
	}

	select {
	case <-workersDone:
	case <-shutdownCtx.Done():
		log.Warn("workers did not drain before deadline")
	}

	log.Info("stopped")
	return nil
}

func buildObjectStore(ctx context.Context, cfg config.Config) (storage.ObjectStore, error) {
	if cfg.S3Bucket == "" {
		return storage.NewMemory(), nil
	}
	return storage.NewS3(ctx, storage.S3Config{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		Profile:      cfg.S3Profile,
		UsePathStyle: cfg.S3UsePathStyle,
	})
}

func buildRepository(cfg config.Config) (store.Repository, error) {
	if cfg.StoreBackend == "redis" {
		return store.NewRedis(store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return store.NewMemory(), nil
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	if cfg.QueueBackend == "kafka" {
		return queue.NewKafka(queue.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
		}, log)
	}
	return queue.NewLocal(cfg.VisibilityTimeout), nil
}
