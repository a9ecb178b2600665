package repositories

import (
	"database/sql"

	"github.com/xR0am/contribpulse/internal/models"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job record
func (r *JobRepository) Create(job *models.Job) error {
	query := `
		INSERT INTO jobs (
			id, repository_id, job_type, status, error_message, depends_on,
			started_at, completed_at, worker_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		job.ID, job.RepositoryID, job.JobType, job.Status, job.ErrorMessage, job.DependsOn,
		job.StartedAt, job.CompletedAt, job.WorkerID, job.CreatedAt, job.UpdatedAt,
	)

	return err
}

// ClaimNextPending atomically claims the oldest runnable pending job of
// the given type for a worker. A job with an unfinished dependency is
// not runnable. Returns nil when no job is available.
func (r *JobRepository) ClaimNextPending(jobType models.JobType, workerID string) (*models.Job, error) {
	query := `
		UPDATE jobs SET
			status = 'in-progress',
			worker_id = ?,
			started_at = datetime('now'),
			updated_at = datetime('now')
		WHERE id = (
			SELECT j.id FROM jobs j
			WHERE j.status = 'pending' AND j.job_type = ?
			  AND (j.depends_on IS NULL OR EXISTS (
				SELECT 1 FROM jobs d WHERE d.id = j.depends_on AND d.status = 'completed'
			  ))
			ORDER BY j.created_at
			LIMIT 1
		)
		RETURNING id, repository_id, job_type, status, error_message, depends_on,
		          started_at, completed_at, worker_id, created_at, updated_at
	`

	var job models.Job
	err := r.db.QueryRow(query, workerID, jobType).Scan(
		&job.ID, &job.RepositoryID, &job.JobType, &job.Status, &job.ErrorMessage, &job.DependsOn,
		&job.StartedAt, &job.CompletedAt, &job.WorkerID, &job.CreatedAt, &job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// Update writes a job's mutable fields
func (r *JobRepository) Update(job *models.Job) error {
	query := `
		UPDATE jobs SET
			status = ?, error_message = ?, started_at = ?, completed_at = ?, worker_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		job.Status, job.ErrorMessage, job.StartedAt, job.CompletedAt, job.WorkerID, job.ID,
	)

	return err
}

// GetByRepositoryID retrieves jobs for a repository, newest first
func (r *JobRepository) GetByRepositoryID(repositoryID string) ([]*models.Job, error) {
	query := `
		SELECT id, repository_id, job_type, status, error_message, depends_on,
		       started_at, completed_at, worker_id, created_at, updated_at
		FROM jobs WHERE repository_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, repositoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var job models.Job
		err := rows.Scan(
			&job.ID, &job.RepositoryID, &job.JobType, &job.Status, &job.ErrorMessage, &job.DependsOn,
			&job.StartedAt, &job.CompletedAt, &job.WorkerID, &job.CreatedAt, &job.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, &job)
	}

	return jobs, nil
}
