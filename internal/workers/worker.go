// Package workers runs the background job queue. Each worker polls for
// pending jobs of its type, claims them atomically and drives the
// matching pipeline. Job chains enforce ordering through dependencies,
// so a score job never runs before its ingest job completed.
package workers

import (
	"context"

	"github.com/xR0am/contribpulse/internal/models"
)

// Worker is the contract every queue worker implements.
type Worker interface {
	// Start begins the worker's poll loop. Blocks until the context is
	// cancelled or the worker is stopped.
	Start(ctx context.Context) error

	// Stop gracefully stops the worker
	Stop() error

	// GetJobType returns the type of job this worker handles
	GetJobType() models.JobType

	// GetWorkerID returns the unique identifier for this worker
	GetWorkerID() string
}

// BaseWorker provides common functionality for all workers
type BaseWorker struct {
	WorkerID string
	JobType  models.JobType
	Running  bool
	StopChan chan struct{}
}

// NewBaseWorker creates a new base worker
func NewBaseWorker(workerID string, jobType models.JobType) *BaseWorker {
	return &BaseWorker{
		WorkerID: workerID,
		JobType:  jobType,
		StopChan: make(chan struct{}),
	}
}

// GetJobType returns the job type this worker handles
func (w *BaseWorker) GetJobType() models.JobType {
	return w.JobType
}

// GetWorkerID returns the worker's unique identifier
func (w *BaseWorker) GetWorkerID() string {
	return w.WorkerID
}

// Stop gracefully stops the worker
func (w *BaseWorker) Stop() error {
	if w.Running {
		w.Running = false
		close(w.StopChan)
	}
	return nil
}

// IsRunning checks if the worker is currently running
func (w *BaseWorker) IsRunning() bool {
	return w.Running
}
