package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	jobledger "reqtrack/backend/features/job"
	"reqtrack/backend/internal/config"
	"reqtrack/backend/internal/job"
	"reqtrack/backend/internal/middleware"
)

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

// IngestConsumer executes queued ingestion jobs (operator retries) with an
// in-process runner and publishes the terminal result. NSQ provides the
// isolation from the API process here, so no child process is spawned.
type IngestConsumer struct {
	runner job.Runner
	pub    TaskPublisher
	ledger jobledger.Repository
}

func NewIngestConsumer(runner job.Runner, pub TaskPublisher, ledger jobledger.Repository) *IngestConsumer {
	return &IngestConsumer{runner: runner, pub: pub, ledger: ledger}
}

func (h *IngestConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var queued QueuedJob
	if err := json.Unmarshal(m.Body, &queued); err != nil {
		// Poison pill: invalid JSON, don't retry.
		slog.Error("poison pill: invalid job envelope", "error", err)
		return nil
	}
	if queued.Type == "" {
		slog.Error("job envelope missing type, dropping", "job_id", queued.ID)
		return nil
	}

	ctx := context.Background()
	if queued.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, queued.CorrelationID)
	}
	if queued.ID == "" {
		queued.ID = uuid.New().String()
	}

	slog.InfoContext(ctx, "executing queued job", "job_id", queued.ID, "job_type", queued.Type)

	result, err := h.runner.Run(ctx, &queued.Job, func(p int) {
		slog.DebugContext(ctx, "queued job progress", "job_id", queued.ID, "progress", p)
	})
	if err != nil {
		slog.ErrorContext(ctx, "queued job failed", "job_id", queued.ID, "error", err)

		failed := &jobledger.Job{
			JobType: queued.Type,
			Payload: queued.Payload,
			Error:   err.Error(),
		}
		if saveErr := h.ledger.Save(ctx, failed); saveErr != nil {
			slog.ErrorContext(ctx, "failed to record failed job", "error", saveErr)
		}

		h.publishResult(ctx, ResultEvent{
			JobID:         queued.ID,
			JobType:       queued.Type,
			Status:        "failed",
			Error:         err.Error(),
			CorrelationID: queued.CorrelationID,
		})

		// Terminal failure is recorded in the ledger; requeueing here would
		// retry without operator intervention.
		return nil
	}

	event := ResultEvent{
		JobID:         queued.ID,
		JobType:       queued.Type,
		Status:        "success",
		Result:        result,
		CorrelationID: queued.CorrelationID,
	}

	body, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal result event", "error", err)
		return nil
	}

	if err := h.pub.Publish(config.TopicIngestResult, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish result", "job_id", queued.ID, "error", err)
		return err // Durable: let NSQ redeliver.
	}

	slog.InfoContext(ctx, "queued job completed", "job_id", queued.ID)
	return nil
}

func (h *IngestConsumer) publishResult(ctx context.Context, event ResultEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal result event", "error", err)
		return
	}
	if err := h.pub.Publish(config.TopicIngestResult, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish failure result", "error", err)
	}
}
