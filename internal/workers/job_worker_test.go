package workers

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/pkg/database"
)

func newTestJobRepo(t *testing.T) *repositories.JobRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.RunSQLScripts(db, "../../migrations"))
	return repositories.NewJobRepository(db)
}

func TestJobWorkerProcessSuccess(t *testing.T) {
	jobRepo := newTestJobRepo(t)

	job := models.NewJob("acme/widgets", models.JobTypeScore)
	require.NoError(t, jobRepo.Create(job))

	claimed, err := jobRepo.ClaimNextPending(models.JobTypeScore, "score-1")
	require.NoError(t, err)
	require.NotNil(t, claimed)

	var handled *models.Job
	worker := NewJobWorker("score-1", models.JobTypeScore, jobRepo, func(_ context.Context, job *models.Job) error {
		handled = job
		return nil
	})
	worker.process(context.Background(), claimed)

	require.NotNil(t, handled)
	assert.Equal(t, job.ID, handled.ID)

	jobs, err := jobRepo.GetByRepositoryID("acme/widgets")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobStatusCompleted, jobs[0].Status)
	assert.NotNil(t, jobs[0].CompletedAt)
}

func TestJobWorkerProcessFailureRecordsError(t *testing.T) {
	jobRepo := newTestJobRepo(t)

	job := models.NewJob("acme/widgets", models.JobTypeIngest)
	require.NoError(t, jobRepo.Create(job))

	claimed, err := jobRepo.ClaimNextPending(models.JobTypeIngest, "ingest-1")
	require.NoError(t, err)
	require.NotNil(t, claimed)

	worker := NewJobWorker("ingest-1", models.JobTypeIngest, jobRepo, func(_ context.Context, _ *models.Job) error {
		return errors.New("rate limited")
	})
	worker.process(context.Background(), claimed)

	jobs, err := jobRepo.GetByRepositoryID("acme/widgets")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobStatusFailed, jobs[0].Status)
	require.NotNil(t, jobs[0].ErrorMessage)
	assert.Equal(t, "rate limited", *jobs[0].ErrorMessage)
}

func TestJobWorkerRunsQueuedJobs(t *testing.T) {
	jobRepo := newTestJobRepo(t)

	job := models.NewJob("acme/widgets", models.JobTypeExport)
	require.NoError(t, jobRepo.Create(job))

	done := make(chan struct{})
	worker := NewJobWorker("export-1", models.JobTypeExport, jobRepo, func(_ context.Context, _ *models.Job) error {
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Start(ctx) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the queued job")
	}

	require.NoError(t, worker.Stop())
}

func TestProcessorUnknownJobType(t *testing.T) {
	proc := &Processor{}
	handler := proc.Handler(models.JobType("bogus"))

	err := handler(context.Background(), models.NewJob("acme/widgets", "bogus"))
	assert.Error(t, err)
}
