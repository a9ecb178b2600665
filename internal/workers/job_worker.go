package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/pkg/logger"
)

const (
	errorPollDelay = 5 * time.Second
	idlePollDelay  = 10 * time.Second
)

// JobHandler runs the work of one claimed job.
type JobHandler func(ctx context.Context, job *models.Job) error

// JobWorker polls the queue for one job type and hands claimed jobs to
// its handler. All five pipeline stages run through this same loop,
// only the handler differs.
type JobWorker struct {
	*BaseWorker
	jobRepo *repositories.JobRepository
	handler JobHandler
	log     *logrus.Entry
}

// NewJobWorker creates a worker for one job type
func NewJobWorker(workerID string, jobType models.JobType, jobRepo *repositories.JobRepository, handler JobHandler) *JobWorker {
	return &JobWorker{
		BaseWorker: NewBaseWorker(workerID, jobType),
		jobRepo:    jobRepo,
		handler:    handler,
		log:        logger.WithComponent("worker").WithField("worker_id", workerID),
	}
}

// Start begins the poll loop
func (w *JobWorker) Start(ctx context.Context) error {
	w.Running = true
	w.log.WithField("job_type", w.JobType).Info("worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopping, context cancelled")
			return ctx.Err()
		case <-w.StopChan:
			w.log.Info("worker stopping")
			return nil
		default:
			job, err := w.jobRepo.ClaimNextPending(w.JobType, w.WorkerID)
			if err != nil {
				w.log.WithError(err).Error("failed to claim job")
				w.sleep(ctx, errorPollDelay)
				continue
			}
			if job == nil {
				w.sleep(ctx, idlePollDelay)
				continue
			}

			w.process(ctx, job)
		}
	}
}

func (w *JobWorker) process(ctx context.Context, job *models.Job) {
	log := w.log.WithField("job_id", job.ID)
	log.Info("processing job")

	if err := w.handler(ctx, job); err != nil {
		log.WithError(err).Error("job failed")
		job.MarkFailed(err.Error())
		if err := w.jobRepo.Update(job); err != nil {
			log.WithError(err).Error("failed to record job failure")
		}
		return
	}

	job.MarkCompleted()
	if err := w.jobRepo.Update(job); err != nil {
		log.WithError(err).Error("failed to record job completion")
		return
	}
	log.Info("job completed")
}

// sleep waits without blocking shutdown
func (w *JobWorker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-w.StopChan:
	case <-time.After(d):
	}
}
