package worker

import (
	"encoding/json"

	"reqtrack/backend/internal/job"
)

// QueuedJob is the envelope on the ingest topic: a job plus the correlation
// ID of the request that queued it.
type QueuedJob struct {
	job.Job
	CorrelationID string `json:"correlation_id,omitempty"`
}

// ResultEvent is published on the result topic when a queued job reaches a
// terminal state.
type ResultEvent struct {
	JobID         string          `json:"job_id"`
	JobType       string          `json:"job_type"`
	Status        string          `json:"status"` // "success" or "failed"
	Result        json.RawMessage `json:"result,omitempty"`
	Error         string          `json:"error,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}
