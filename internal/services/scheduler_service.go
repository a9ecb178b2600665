package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/pkg/logger"
)

// SchedulerService enqueues the periodic processing chain for every
// tracked repository. Each repository gets its own dependent chain:
// ingest, then score, then tag, then summary, then export.
type SchedulerService struct {
	repositoryRepo *repositories.RepositoryRepository
	jobRepo        *repositories.JobRepository
	log            *logrus.Entry
}

func NewSchedulerService(repositoryRepo *repositories.RepositoryRepository, jobRepo *repositories.JobRepository) *SchedulerService {
	return &SchedulerService{
		repositoryRepo: repositoryRepo,
		jobRepo:        jobRepo,
		log:            logger.WithComponent("scheduler"),
	}
}

// Start runs the scheduler loop until the context is cancelled. Job
// chains are enqueued at the top of every hour.
func (s *SchedulerService) Start(ctx context.Context) {
	go func() {
		for {
			now := time.Now()
			nextHour := now.Truncate(time.Hour).Add(time.Hour)

			select {
			case <-ctx.Done():
				s.log.Info("scheduler stopped")
				return
			case <-time.After(nextHour.Sub(now)):
			}

			if err := s.ScheduleAll(); err != nil {
				s.log.WithError(err).Error("failed to schedule repository updates")
			}
		}
	}()
}

// ScheduleAll enqueues the processing chain for every tracked
// repository. One repository failing to enqueue does not block the
// others.
func (s *SchedulerService) ScheduleAll() error {
	repos, err := s.repositoryRepo.GetTracked()
	if err != nil {
		return err
	}

	for _, repo := range repos {
		if err := s.ScheduleRepository(repo.ID); err != nil {
			s.log.WithError(err).WithField("repository", repo.ID).Error("failed to enqueue job chain")
		}
	}

	return nil
}

// ScheduleRepository enqueues the full dependent job chain for one
// repository and returns the ingest job heading the chain.
func (s *SchedulerService) ScheduleRepository(repositoryID string) error {
	chain := []models.JobType{
		models.JobTypeIngest,
		models.JobTypeScore,
		models.JobTypeTag,
		models.JobTypeSummary,
		models.JobTypeExport,
	}

	var previous *models.Job
	for _, jobType := range chain {
		job := models.NewJob(repositoryID, jobType)
		if previous != nil {
			job.DependsOn = &previous.ID
		}
		if err := s.jobRepo.Create(job); err != nil {
			return err
		}
		previous = job
	}

	s.log.WithFields(logrus.Fields{
		"repository": repositoryID,
		"jobs":       len(chain),
	}).Info("job chain enqueued")

	return nil
}
