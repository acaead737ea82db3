package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"reqtrack/backend/internal/adapter/gemini"
	"reqtrack/backend/internal/config"
	"reqtrack/backend/internal/extract"
	"reqtrack/backend/internal/job"
)

// ingest-worker is the disposable child process the dispatcher spawns per
// job. It takes exactly one argument, the job file path, speaks the IPC
// protocol on stdout and exits 0 only when a completed message was sent.
func main() {
	// Stdout is the IPC channel, so all logging goes to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: ingest-worker <job-file>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		job.NewEmitter(os.Stdout).Failed(fmt.Sprintf("load config: %v", err))
		os.Exit(1)
	}

	ctx := context.Background()

	extractor, err := gemini.NewExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		job.NewEmitter(os.Stdout).Failed(fmt.Sprintf("init extractor: %v", err))
		os.Exit(1)
	}
	defer extractor.Close()

	pipeline := extract.NewPipeline(extract.NewClient(extractor), extract.Options{
		ChunkSize:     cfg.ChunkSize,
		ChunkOverlap:  cfg.ChunkOverlap,
		MaxChunks:     cfg.MaxChunks,
		MinTotalItems: cfg.MinTotalItems,
	})

	os.Exit(job.Run(ctx, os.Args[1], job.NewIngestRegistry(pipeline), os.Stdout))
}
