package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"

	"reqtrack/backend/features/ingestion"
	jobledger "reqtrack/backend/features/job"
	"reqtrack/backend/internal/adapter/gemini"
	"reqtrack/backend/internal/config"
	"reqtrack/backend/internal/extract"
	"reqtrack/backend/internal/job"
	"reqtrack/backend/internal/logger"
	"reqtrack/backend/internal/middleware"
	"reqtrack/backend/internal/worker"
)

func main() {
	// Structured logger with correlation IDs pulled from request context.
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Database connection with startup retries.
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("failed to open db connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	for i := 0; i < cfg.BootstrapRetries; i++ {
		if err := db.Ping(); err == nil {
			break
		}
		slog.Warn("failed to ping db, retrying...", "attempt", i+1, "max_attempts", cfg.BootstrapRetries)
		time.Sleep(time.Duration(cfg.BootstrapRetryWait) * time.Second)
	}
	if err := db.Ping(); err != nil {
		slog.Error("failed to ping db after retries", "error", err)
		os.Exit(1)
	}

	if err := runMigrations(db, cfg.MigrationPath); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied successfully")

	// NSQ producer for retry publishing.
	nsqProducer, err := nsq.NewProducer(cfg.NSQDHost, nsq.NewConfig())
	if err != nil {
		slog.Error("failed to create NSQ producer", "error", err)
		os.Exit(1)
	}

	// Failed-jobs ledger.
	jobRepo := jobledger.NewPostgresRepo(db)
	jobService := jobledger.NewService(jobRepo, nsqProducer)
	jobHandler := jobledger.NewHandler(jobService)

	// Ingestion runs each job in a disposable worker process so a crash or
	// memory spike in extraction never takes the API down.
	runner := job.NewProcessRunner(cfg.WorkerBin, cfg.WorkerTimeout())
	ingestService := ingestion.NewService(runner, jobRepo)
	ingestHandler := ingestion.NewHandler(ingestService, ingestion.PlainTextReader{}, cfg.MaxUploadSizeMB<<20)

	// Queue worker: executes retried jobs in-process off NSQ.
	if cfg.EnableQueueWorker {
		if err := startQueueWorker(cfg, jobRepo, nsqProducer); err != nil {
			slog.Error("failed to start queue worker", "error", err)
			os.Exit(1)
		}
	}

	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	http.Handle("POST /ingestions", middleware.CorrelationID(enableCORS(ingestHandler.Create)))
	http.Handle("POST /ingestions/upload", middleware.CorrelationID(enableCORS(ingestHandler.Upload)))

	http.Handle("GET /jobs", middleware.CorrelationID(enableCORS(jobHandler.List)))
	http.Handle("GET /jobs/count", middleware.CorrelationID(enableCORS(jobHandler.Count)))
	http.Handle("POST /jobs/{id}/retry", middleware.CorrelationID(enableCORS(jobHandler.Retry)))
	http.Handle("DELETE /jobs/{id}", middleware.CorrelationID(enableCORS(jobHandler.Delete)))

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	slog.Info("server starting", "port", cfg.ServerPort)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.ServerPort), nil); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func runMigrations(db *sql.DB, path string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func startQueueWorker(cfg *config.Config, jobRepo jobledger.Repository, producer *nsq.Producer) error {
	extractor, err := gemini.NewExtractor(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return fmt.Errorf("init extractor: %w", err)
	}

	pipeline := extract.NewPipeline(extract.NewClient(extractor), extract.Options{
		ChunkSize:     cfg.ChunkSize,
		ChunkOverlap:  cfg.ChunkOverlap,
		MaxChunks:     cfg.MaxChunks,
		MinTotalItems: cfg.MinTotalItems,
	})

	runner := job.NewLocalRunner(job.NewIngestRegistry(pipeline))
	ingestConsumer := worker.NewIngestConsumer(runner, producer, jobRepo)

	consumer, err := nsq.NewConsumer(config.TopicIngestDocument, "backend", nsq.NewConfig())
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}

	consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		return ingestConsumer.HandleMessage(m)
	}))

	if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
		return fmt.Errorf("connect to nsqlookupd: %w", err)
	}

	slog.Info("queue worker connected", "topic", config.TopicIngestDocument)
	return nil
}
