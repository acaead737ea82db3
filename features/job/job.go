package job

import (
	"encoding/json"
	"time"
)

// Job is one row of the failed-jobs ledger: a terminally failed ingestion
// job kept around for inspection and operator-driven retry.
type Job struct {
	ID        string          `json:"id"`
	JobType   string          `json:"job_type"`
	Payload   json.RawMessage `json:"payload"`
	Error     string          `json:"error"`
	Retries   int             `json:"retries"`
	CreatedAt time.Time       `json:"created_at"`
}
