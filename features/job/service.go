package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"reqtrack/backend/internal/config"
	"reqtrack/backend/internal/middleware"
)

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo Repository
	pub  EventPublisher
}

func NewService(repo Repository, pub EventPublisher) *Service {
	return &Service{repo: repo, pub: pub}
}

func (s *Service) List(ctx context.Context) ([]Job, error) {
	return s.repo.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Retry republishes a failed job to the ingest queue and removes it from the
// ledger. The queue consumer picks it up and runs it again; if it fails once
// more, a fresh ledger row is written.
func (s *Service) Retry(ctx context.Context, id string) error {
	j, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	envelope, err := json.Marshal(map[string]any{
		"id":             j.ID,
		"type":           j.JobType,
		"data":           j.Payload,
		"correlation_id": middleware.GetCorrelationID(ctx),
	})
	if err != nil {
		return fmt.Errorf("marshal retry envelope: %w", err)
	}

	if err := s.pub.Publish(config.TopicIngestDocument, envelope); err != nil {
		return fmt.Errorf("publish retry: %w", err)
	}

	slog.InfoContext(ctx, "failed job requeued", "job_id", j.ID, "job_type", j.JobType)

	return s.repo.Delete(ctx, id)
}
