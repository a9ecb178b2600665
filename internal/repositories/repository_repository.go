package repositories

import (
	"database/sql"
	"time"

	"github.com/xR0am/contribpulse/internal/models"
)

type RepositoryRepository struct {
	db *sql.DB
}

func NewRepositoryRepository(db *sql.DB) *RepositoryRepository {
	return &RepositoryRepository{db: db}
}

// Upsert creates or refreshes a tracked repository entry
func (r *RepositoryRepository) Upsert(repo *models.Repository) error {
	query := `
		INSERT INTO repositories (id, default_branch, is_tracked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET
			default_branch = EXCLUDED.default_branch,
			is_tracked = EXCLUDED.is_tracked,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query,
		repo.ID, repo.DefaultBranch, repo.IsTracked, repo.CreatedAt, repo.UpdatedAt,
	)

	return err
}

// GetByID retrieves a repository by its owner/name slug
func (r *RepositoryRepository) GetByID(id string) (*models.Repository, error) {
	query := `
		SELECT id, default_branch, is_tracked, last_ingested_at, created_at, updated_at
		FROM repositories WHERE id = ?
	`

	var repo models.Repository
	var lastIngested sql.NullString
	err := r.db.QueryRow(query, id).Scan(
		&repo.ID, &repo.DefaultBranch, &repo.IsTracked, &lastIngested, &repo.CreatedAt, &repo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastIngested.Valid {
		if parsed, err := time.Parse(time.RFC3339, lastIngested.String); err == nil {
			repo.LastIngestedAt = &parsed
		}
	}

	return &repo, nil
}

// GetTracked retrieves all repositories selected for processing
func (r *RepositoryRepository) GetTracked() ([]*models.Repository, error) {
	query := `
		SELECT id, default_branch, is_tracked, last_ingested_at, created_at, updated_at
		FROM repositories WHERE is_tracked = 1
		ORDER BY id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []*models.Repository
	for rows.Next() {
		var repo models.Repository
		var lastIngested sql.NullString
		err := rows.Scan(
			&repo.ID, &repo.DefaultBranch, &repo.IsTracked, &lastIngested, &repo.CreatedAt, &repo.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if lastIngested.Valid {
			if parsed, err := time.Parse(time.RFC3339, lastIngested.String); err == nil {
				repo.LastIngestedAt = &parsed
			}
		}
		repos = append(repos, &repo)
	}

	return repos, nil
}

// MarkIngested records the time the repository's activity was last synced
func (r *RepositoryRepository) MarkIngested(id string, at time.Time) error {
	query := `UPDATE repositories SET last_ingested_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.Exec(query, at.UTC().Format(time.RFC3339), id)
	return err
}
