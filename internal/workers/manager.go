package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/pkg/logger"
)

// WorkerManager owns the worker pool. Ingest and summary stages talk to
// external services and get more workers; the rest are cheap local
// pipelines.
type WorkerManager struct {
	workers []Worker
	jobRepo *repositories.JobRepository
	proc    *Processor
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	log     *logrus.Entry
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(jobRepo *repositories.JobRepository, proc *Processor) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		jobRepo: jobRepo,
		proc:    proc,
		ctx:     ctx,
		cancel:  cancel,
		log:     logger.WithComponent("worker-manager"),
	}
}

// StartAll starts the configured number of workers per job type.
func (wm *WorkerManager) StartAll() error {
	counts := map[models.JobType]int{
		models.JobTypeIngest:  2,
		models.JobTypeScore:   1,
		models.JobTypeTag:     1,
		models.JobTypeSummary: 2,
		models.JobTypeExport:  1,
	}

	for jobType, count := range counts {
		for i := 0; i < count; i++ {
			workerID := fmt.Sprintf("%s-%d", jobType, i+1)
			worker := NewJobWorker(workerID, jobType, wm.jobRepo, wm.proc.Handler(jobType))
			wm.workers = append(wm.workers, worker)
			wm.startWorker(worker)
		}
	}

	wm.log.WithField("workers", len(wm.workers)).Info("workers started")
	return nil
}

// StopAll gracefully stops all workers and waits for them to finish.
func (wm *WorkerManager) StopAll() error {
	wm.log.Info("stopping all workers")

	wm.cancel()
	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			wm.log.WithError(err).WithField("worker_id", worker.GetWorkerID()).Error("failed to stop worker")
		}
	}

	wm.wg.Wait()
	wm.log.Info("all workers stopped")
	return nil
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			wm.log.WithError(err).WithField("worker_id", worker.GetWorkerID()).Error("worker stopped with error")
		}
	}()
}

// GetWorkerStatus returns the running state of every worker.
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool)
	for _, worker := range wm.workers {
		if jw, ok := worker.(*JobWorker); ok {
			status[worker.GetWorkerID()] = jw.IsRunning()
		} else {
			status[worker.GetWorkerID()] = false
		}
	}
	return status
}
