package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqtrack/backend/internal/testutils"
)

func TestPostgresRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	suite := testutils.NewIntegrationSuite(t)
	suite.Setup()
	defer suite.Teardown()

	repo := NewPostgresRepo(suite.DB)
	ctx := context.Background()

	first := &Job{
		JobType: "ingest.document",
		Payload: json.RawMessage(`{"project_name":"Apollo","content":"the doc"}`),
		Error:   "job timed out",
	}
	require.NoError(t, repo.Save(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, 0, first.Retries)

	second := &Job{
		JobType: "ingest.document",
		Payload: json.RawMessage(`{"project_name":"Apollo","content":"another"}`),
		Error:   "worker terminated unexpectedly",
	}
	require.NoError(t, repo.Save(ctx, second))

	t.Run("List Newest First", func(t *testing.T) {
		jobs, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, second.ID, jobs[0].ID)
		assert.JSONEq(t, string(second.Payload), string(jobs[0].Payload))
	})

	t.Run("Get", func(t *testing.T) {
		j, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "job timed out", j.Error)
	})

	t.Run("Count", func(t *testing.T) {
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, first.ID))

		_, err := repo.Get(ctx, first.ID)
		assert.ErrorIs(t, err, sql.ErrNoRows)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
