package models

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of background job
type JobType string

const (
	JobTypeIngest  JobType = "ingest"
	JobTypeScore   JobType = "score"
	JobTypeTag     JobType = "tag"
	JobTypeSummary JobType = "summary"
	JobTypeExport  JobType = "export"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents a background processing job for one repository
type Job struct {
	ID           string     `json:"id"`
	RepositoryID *string    `json:"repository_id"`
	JobType      JobType    `json:"job_type"`
	Status       JobStatus  `json:"status"`
	ErrorMessage *string    `json:"error_message"`
	DependsOn    *string    `json:"depends_on"`
	StartedAt    *time.Time `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	WorkerID     *string    `json:"worker_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewJob creates a new Job with a generated UUID
func NewJob(repositoryID string, jobType JobType) *Job {
	now := time.Now()
	job := &Job{
		ID:        uuid.New().String(),
		JobType:   jobType,
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if repositoryID != "" {
		job.RepositoryID = &repositoryID
	}
	return job
}

// IsPending checks if the job is pending
func (j *Job) IsPending() bool {
	return j.Status == JobStatusPending
}

// IsCompleted checks if the job is completed
func (j *Job) IsCompleted() bool {
	return j.Status == JobStatusCompleted
}

// IsFailed checks if the job is failed
func (j *Job) IsFailed() bool {
	return j.Status == JobStatusFailed
}

// MarkStarted marks the job as started
func (j *Job) MarkStarted(workerID string) {
	now := time.Now()
	j.Status = JobStatusInProgress
	j.StartedAt = &now
	j.WorkerID = &workerID
}

// MarkCompleted marks the job as completed
func (j *Job) MarkCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
}

// MarkFailed marks the job as failed with an error message
func (j *Job) MarkFailed(message string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.ErrorMessage = &message
}
