package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job is one unit of background work. Immutable once dispatched; exactly one
// worker owns it for its lifetime.
type Job struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at,omitzero"`
}

func New(jobType string, payload any) (*Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}
	return &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// IPC message types. A worker sends any number of progress messages followed
// by exactly one terminal message (completed or failed).
const (
	MessageProgress  = "progress"
	MessageCompleted = "completed"
	MessageFailed    = "failed"
)

// Message is one newline-delimited JSON frame on the worker's stdout.
type Message struct {
	Type     string          `json:"type"`
	Progress int             `json:"progress,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func (m *Message) Terminal() bool {
	return m.Type == MessageCompleted || m.Type == MessageFailed
}
