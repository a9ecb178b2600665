package repositories

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/xR0am/contribpulse/internal/models"
)

type PullRequestRepository struct {
	db *sql.DB
}

func NewPullRequestRepository(db *sql.DB) *PullRequestRepository {
	return &PullRequestRepository{db: db}
}

// Upsert creates or updates a pull request keyed by (repository, number)
func (r *PullRequestRepository) Upsert(pr *models.PullRequest) error {
	query := `
		INSERT INTO pull_requests (
			id, repository_id, number, title, author, body, state,
			additions, deletions, changed_files, github_created_at, merged_at, closed_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, number)
		DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			state = EXCLUDED.state,
			additions = EXCLUDED.additions,
			deletions = EXCLUDED.deletions,
			changed_files = EXCLUDED.changed_files,
			merged_at = EXCLUDED.merged_at,
			closed_at = EXCLUDED.closed_at,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query,
		pr.ID, pr.RepositoryID, pr.Number, pr.Title, pr.Author, pr.Body, pr.State,
		pr.Additions, pr.Deletions, pr.ChangedFiles, pr.GithubCreatedAt, pr.MergedAt, pr.ClosedAt,
		pr.CreatedAt, pr.UpdatedAt,
	)

	return err
}

// ReplaceFiles overwrites the file path list associated with a pull request
func (r *PullRequestRepository) ReplaceFiles(repositoryID string, number int, paths []string) error {
	prID, err := r.lookupID(repositoryID, number)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(`DELETE FROM pr_files WHERE pull_request_id = ?`, prID); err != nil {
		return err
	}

	for _, path := range paths {
		_, err := r.db.Exec(
			`INSERT INTO pr_files (id, pull_request_id, path) VALUES (?, ?, ?)
			 ON CONFLICT(pull_request_id, path) DO NOTHING`,
			uuid.New().String(), prID, path,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *PullRequestRepository) lookupID(repositoryID string, number int) (string, error) {
	var id string
	err := r.db.QueryRow(
		`SELECT id FROM pull_requests WHERE repository_id = ? AND number = ?`,
		repositoryID, number,
	).Scan(&id)
	return id, err
}

// GetByRepositoryAndDateRange retrieves pull requests created within the
// half-open [start, end) window, file paths included.
func (r *PullRequestRepository) GetByRepositoryAndDateRange(repositoryID, start, end string) ([]*models.PullRequest, error) {
	query := `
		SELECT id, repository_id, number, title, author, body, state,
		       additions, deletions, changed_files, github_created_at, merged_at, closed_at,
		       created_at, updated_at
		FROM pull_requests
		WHERE repository_id = ? AND github_created_at >= ? AND github_created_at < ?
		ORDER BY github_created_at
	`

	rows, err := r.db.Query(query, repositoryID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prs []*models.PullRequest
	for rows.Next() {
		var pr models.PullRequest
		err := rows.Scan(
			&pr.ID, &pr.RepositoryID, &pr.Number, &pr.Title, &pr.Author, &pr.Body, &pr.State,
			&pr.Additions, &pr.Deletions, &pr.ChangedFiles, &pr.GithubCreatedAt, &pr.MergedAt, &pr.ClosedAt,
			&pr.CreatedAt, &pr.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		prs = append(prs, &pr)
	}

	for _, pr := range prs {
		paths, err := r.getFiles(pr.ID)
		if err != nil {
			return nil, err
		}
		pr.FilePaths = paths
	}

	return prs, nil
}

func (r *PullRequestRepository) getFiles(prID string) ([]string, error) {
	rows, err := r.db.Query(`SELECT path FROM pr_files WHERE pull_request_id = ? ORDER BY path`, prID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// GetAuthorsInRange retrieves the distinct PR authors active in a window
func (r *PullRequestRepository) GetAuthorsInRange(repositoryID, start, end string) ([]string, error) {
	query := `
		SELECT DISTINCT author FROM pull_requests
		WHERE repository_id = ? AND github_created_at >= ? AND github_created_at < ?
	`
	return queryStrings(r.db, query, repositoryID, start, end)
}

// GetDateRange retrieves the earliest and latest PR creation dates for a repository
func (r *PullRequestRepository) GetDateRange(repositoryID string) (string, string, error) {
	var min, max sql.NullString
	err := r.db.QueryRow(
		`SELECT MIN(substr(github_created_at, 1, 10)), MAX(substr(github_created_at, 1, 10))
		 FROM pull_requests WHERE repository_id = ?`,
		repositoryID,
	).Scan(&min, &max)
	if err != nil {
		return "", "", err
	}
	return min.String, max.String, nil
}

// queryStrings runs a query returning a single TEXT column
func queryStrings(db *sql.DB, query string, args ...interface{}) ([]string, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, nil
}
