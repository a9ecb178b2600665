package repositories

import (
	"database/sql"

	"github.com/xR0am/contribpulse/internal/models"
)

type CommitRepository struct {
	db *sql.DB
}

func NewCommitRepository(db *sql.DB) *CommitRepository {
	return &CommitRepository{db: db}
}

// Upsert creates or updates a commit keyed by (repository, sha)
func (r *CommitRepository) Upsert(commit *models.Commit) error {
	query := `
		INSERT INTO commits (
			id, repository_id, sha, author, message, additions, deletions, changed_files,
			committed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, sha)
		DO UPDATE SET
			additions = EXCLUDED.additions,
			deletions = EXCLUDED.deletions,
			changed_files = EXCLUDED.changed_files,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query,
		commit.ID, commit.RepositoryID, commit.SHA, commit.Author, commit.Message,
		commit.Additions, commit.Deletions, commit.ChangedFiles,
		commit.CommittedAt, commit.CreatedAt, commit.UpdatedAt,
	)

	return err
}

// GetByRepositoryAndDateRange retrieves commits made within [start, end)
func (r *CommitRepository) GetByRepositoryAndDateRange(repositoryID, start, end string) ([]*models.Commit, error) {
	query := `
		SELECT id, repository_id, sha, author, message, additions, deletions, changed_files,
		       committed_at, created_at, updated_at
		FROM commits
		WHERE repository_id = ? AND committed_at >= ? AND committed_at < ?
		ORDER BY committed_at
	`

	rows, err := r.db.Query(query, repositoryID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commits []*models.Commit
	for rows.Next() {
		var commit models.Commit
		err := rows.Scan(
			&commit.ID, &commit.RepositoryID, &commit.SHA, &commit.Author, &commit.Message,
			&commit.Additions, &commit.Deletions, &commit.ChangedFiles,
			&commit.CommittedAt, &commit.CreatedAt, &commit.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		commits = append(commits, &commit)
	}

	return commits, nil
}

// GetAuthorsInRange retrieves the distinct commit authors active in a window
func (r *CommitRepository) GetAuthorsInRange(repositoryID, start, end string) ([]string, error) {
	query := `
		SELECT DISTINCT author FROM commits
		WHERE repository_id = ? AND committed_at >= ? AND committed_at < ?
	`
	return queryStrings(r.db, query, repositoryID, start, end)
}

// GetDateRange retrieves the earliest and latest commit dates for a repository
func (r *CommitRepository) GetDateRange(repositoryID string) (string, string, error) {
	var min, max sql.NullString
	err := r.db.QueryRow(
		`SELECT MIN(substr(committed_at, 1, 10)), MAX(substr(committed_at, 1, 10))
		 FROM commits WHERE repository_id = ?`,
		repositoryID,
	).Scan(&min, &max)
	if err != nil {
		return "", "", err
	}
	return min.String, max.String, nil
}
