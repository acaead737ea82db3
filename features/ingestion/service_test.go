package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobledger "reqtrack/backend/features/job"
	"reqtrack/backend/internal/extract"
	"reqtrack/backend/internal/job"
)

type fakeRunner struct {
	result json.RawMessage
	err    error
	jobs   []*job.Job
}

func (f *fakeRunner) Run(ctx context.Context, j *job.Job, onProgress func(int)) (json.RawMessage, error) {
	f.jobs = append(f.jobs, j)
	if onProgress != nil {
		onProgress(100)
	}
	return f.result, f.err
}

type recordingLedger struct {
	saved []*jobledger.Job
}

func (r *recordingLedger) Save(ctx context.Context, j *jobledger.Job) error {
	r.saved = append(r.saved, j)
	return nil
}

func TestIngestDocument(t *testing.T) {
	req := DocumentRequest{
		ProjectName: "Apollo",
		FileName:    "srs.txt",
		ContentType: "text",
		Content:     "The system shall support single sign-on.",
	}

	t.Run("Success", func(t *testing.T) {
		runner := &fakeRunner{result: json.RawMessage(
			`{"items":[{"title":"SSO","description":"d","category":"auth","priority":"high","source_chunk_index":0}],` +
				`"chunks_total":1,"chunks_sampled":1,"chunks_failed":0}`)}
		ledger := &recordingLedger{}
		svc := NewService(runner, ledger)

		result, err := svc.IngestDocument(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "SSO", result.Items[0].Title)
		assert.Equal(t, 1, result.ChunksTotal)
		assert.Empty(t, ledger.saved)

		require.Len(t, runner.jobs, 1)
		assert.Equal(t, job.TypeIngestDocument, runner.jobs[0].Type)

		var payload extract.DocumentJob
		require.NoError(t, json.Unmarshal(runner.jobs[0].Payload, &payload))
		assert.Equal(t, "Apollo", payload.ProjectName)
		assert.Equal(t, req.Content, payload.Content)
	})

	t.Run("Blank Content Rejected Before Dispatch", func(t *testing.T) {
		runner := &fakeRunner{}
		svc := NewService(runner, &recordingLedger{})

		blank := req
		blank.Content = "   \n\t "
		_, err := svc.IngestDocument(context.Background(), blank)
		assert.ErrorIs(t, err, extract.ErrEmptyDocument)
		assert.Empty(t, runner.jobs, "no worker spawned for empty input")
	})

	t.Run("Runner Failure Recorded In Ledger", func(t *testing.T) {
		runner := &fakeRunner{err: job.ErrJobTimeout}
		ledger := &recordingLedger{}
		svc := NewService(runner, ledger)

		_, err := svc.IngestDocument(context.Background(), req)
		assert.ErrorIs(t, err, job.ErrJobTimeout)

		require.Len(t, ledger.saved, 1)
		assert.Equal(t, job.TypeIngestDocument, ledger.saved[0].JobType)
		assert.Contains(t, ledger.saved[0].Error, "timed out")
	})

	t.Run("Nil Ledger Tolerated", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("spawn worker: not found")}
		svc := NewService(runner, nil)

		_, err := svc.IngestDocument(context.Background(), req)
		assert.Error(t, err)
	})

	t.Run("Undecodable Result", func(t *testing.T) {
		runner := &fakeRunner{result: json.RawMessage(`"not an object"`)}
		svc := NewService(runner, &recordingLedger{})

		_, err := svc.IngestDocument(context.Background(), req)
		assert.ErrorContains(t, err, "decode job result")
	})
}
