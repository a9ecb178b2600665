package repositories

import (
	"database/sql"

	"github.com/xR0am/contribpulse/internal/models"
)

type IssueRepository struct {
	db *sql.DB
}

func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Upsert creates or updates an issue keyed by (repository, number)
func (r *IssueRepository) Upsert(issue *models.Issue) error {
	query := `
		INSERT INTO issues (
			id, repository_id, number, title, author, state, comment_count,
			github_created_at, closed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, number)
		DO UPDATE SET
			title = EXCLUDED.title,
			state = EXCLUDED.state,
			comment_count = EXCLUDED.comment_count,
			closed_at = EXCLUDED.closed_at,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query,
		issue.ID, issue.RepositoryID, issue.Number, issue.Title, issue.Author, issue.State,
		issue.CommentCount, issue.GithubCreatedAt, issue.ClosedAt, issue.CreatedAt, issue.UpdatedAt,
	)

	return err
}

// GetByRepositoryAndDateRange retrieves issues created within [start, end)
func (r *IssueRepository) GetByRepositoryAndDateRange(repositoryID, start, end string) ([]*models.Issue, error) {
	query := `
		SELECT id, repository_id, number, title, author, state, comment_count,
		       github_created_at, closed_at, created_at, updated_at
		FROM issues
		WHERE repository_id = ? AND github_created_at >= ? AND github_created_at < ?
		ORDER BY github_created_at
	`

	rows, err := r.db.Query(query, repositoryID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		var issue models.Issue
		err := rows.Scan(
			&issue.ID, &issue.RepositoryID, &issue.Number, &issue.Title, &issue.Author, &issue.State,
			&issue.CommentCount, &issue.GithubCreatedAt, &issue.ClosedAt, &issue.CreatedAt, &issue.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		issues = append(issues, &issue)
	}

	return issues, nil
}

// GetAuthorsInRange retrieves the distinct issue authors active in a window
func (r *IssueRepository) GetAuthorsInRange(repositoryID, start, end string) ([]string, error) {
	query := `
		SELECT DISTINCT author FROM issues
		WHERE repository_id = ? AND github_created_at >= ? AND github_created_at < ?
	`
	return queryStrings(r.db, query, repositoryID, start, end)
}
