package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	jobledger "reqtrack/backend/features/job"
	"reqtrack/backend/internal/extract"
	"reqtrack/backend/internal/job"
)

// DocumentRequest is what a caller submits for ingestion: decoded text plus
// the document-level context the extraction prompts embed.
type DocumentRequest struct {
	ProjectName string `json:"project_name"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// FailedJobRecorder is the slice of the ledger the service needs.
type FailedJobRecorder interface {
	Save(ctx context.Context, j *jobledger.Job) error
}

// Service dispatches a document through the configured runner and waits for
// the terminal result. Terminal failures are written to the failed-jobs
// ledger so operators can inspect and retry them.
type Service struct {
	runner job.Runner
	ledger FailedJobRecorder
}

func NewService(runner job.Runner, ledger FailedJobRecorder) *Service {
	return &Service{runner: runner, ledger: ledger}
}

func (s *Service) IngestDocument(ctx context.Context, req DocumentRequest) (*extract.Result, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: %q", extract.ErrEmptyDocument, req.FileName)
	}

	j, err := job.New(job.TypeIngestDocument, extract.DocumentJob{
		ProjectName: req.ProjectName,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Content:     req.Content,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "dispatching ingestion job",
		"job_id", j.ID, "project", req.ProjectName, "file", req.FileName, "bytes", len(req.Content))

	raw, err := s.runner.Run(ctx, j, func(p int) {
		slog.DebugContext(ctx, "ingestion progress", "job_id", j.ID, "progress", p)
	})
	if err != nil {
		s.recordFailure(ctx, j, err)
		return nil, err
	}

	var result extract.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode job result: %w", err)
	}
	return &result, nil
}

func (s *Service) recordFailure(ctx context.Context, j *job.Job, runErr error) {
	if s.ledger == nil {
		return
	}
	failed := &jobledger.Job{
		JobType: j.Type,
		Payload: j.Payload,
		Error:   runErr.Error(),
	}
	if err := s.ledger.Save(ctx, failed); err != nil {
		slog.ErrorContext(ctx, "failed to record failed job", "job_id", j.ID, "error", err)
		return
	}
	slog.InfoContext(ctx, "failed job recorded for retry", "job_id", j.ID, "ledger_id", failed.ID)
}
