package repositories

import (
	"database/sql"

	"github.com/xR0am/contribpulse/internal/models"
)

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// UpsertRepoSummary creates or overwrites a repository summary
func (r *SummaryRepository) UpsertRepoSummary(summary *models.RepoSummary) error {
	query := `
		INSERT INTO repo_summaries (
			id, repository_id, interval_type, date, summary, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET
			summary = EXCLUDED.summary,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query,
		summary.ID, summary.RepositoryID, summary.IntervalType, summary.Date, summary.Summary,
		summary.CreatedAt, summary.UpdatedAt,
	)

	return err
}

// UpsertUserSummary creates or overwrites a contributor summary
func (r *SummaryRepository) UpsertUserSummary(summary *models.UserSummary) error {
	query := `
		INSERT INTO user_summaries (
			id, username, interval_type, date, summary, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET
			summary = EXCLUDED.summary,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query,
		summary.ID, summary.Username, summary.IntervalType, summary.Date, summary.Summary,
		summary.CreatedAt, summary.UpdatedAt,
	)

	return err
}

// RepoSummaryExists reports whether a non-empty summary is already
// stored for the composite key.
func (r *SummaryRepository) RepoSummaryExists(id string) (bool, error) {
	return r.exists(`SELECT summary FROM repo_summaries WHERE id = ?`, id)
}

// UserSummaryExists reports whether a non-empty summary is already
// stored for the composite key.
func (r *SummaryRepository) UserSummaryExists(id string) (bool, error) {
	return r.exists(`SELECT summary FROM user_summaries WHERE id = ?`, id)
}

// GetRepoSummary retrieves one repository summary text by its composite
// key. Returns an empty string when none is stored.
func (r *SummaryRepository) GetRepoSummary(id string) (string, error) {
	var summary string
	err := r.db.QueryRow(`SELECT summary FROM repo_summaries WHERE id = ?`, id).Scan(&summary)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return summary, nil
}

func (r *SummaryRepository) exists(query, id string) (bool, error) {
	var summary string
	err := r.db.QueryRow(query, id).Scan(&summary)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return summary != "", nil
}

// GetRepoSummaries retrieves summaries for a repository and interval
// type, newest first.
func (r *SummaryRepository) GetRepoSummaries(repositoryID, intervalType string) ([]*models.RepoSummary, error) {
	query := `
		SELECT id, repository_id, interval_type, date, summary, created_at, updated_at
		FROM repo_summaries
		WHERE repository_id = ? AND interval_type = ?
		ORDER BY date DESC
	`

	rows, err := r.db.Query(query, repositoryID, intervalType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*models.RepoSummary
	for rows.Next() {
		var summary models.RepoSummary
		err := rows.Scan(
			&summary.ID, &summary.RepositoryID, &summary.IntervalType, &summary.Date, &summary.Summary,
			&summary.CreatedAt, &summary.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &summary)
	}

	return summaries, nil
}

// GetUserSummaries retrieves summaries for a contributor and interval
// type, newest first.
func (r *SummaryRepository) GetUserSummaries(username, intervalType string) ([]*models.UserSummary, error) {
	query := `
		SELECT id, username, interval_type, date, summary, created_at, updated_at
		FROM user_summaries
		WHERE username = ? AND interval_type = ?
		ORDER BY date DESC
	`

	rows, err := r.db.Query(query, username, intervalType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*models.UserSummary
	for rows.Next() {
		var summary models.UserSummary
		err := rows.Scan(
			&summary.ID, &summary.Username, &summary.IntervalType, &summary.Date, &summary.Summary,
			&summary.CreatedAt, &summary.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &summary)
	}

	return summaries, nil
}
