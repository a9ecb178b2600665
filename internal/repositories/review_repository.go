package repositories

import (
	"database/sql"

	"github.com/xR0am/contribpulse/internal/models"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert creates or updates a review row
func (r *ReviewRepository) Upsert(review *models.Review) error {
	query := `
		INSERT INTO reviews (
			id, repository_id, pull_request_number, author, state, submitted_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET
			state = EXCLUDED.state,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query,
		review.ID, review.RepositoryID, review.PullRequestNumber, review.Author, review.State,
		review.SubmittedAt, review.CreatedAt, review.UpdatedAt,
	)

	return err
}

// GetByRepositoryAndDateRange retrieves reviews submitted within [start, end)
func (r *ReviewRepository) GetByRepositoryAndDateRange(repositoryID, start, end string) ([]*models.Review, error) {
	query := `
		SELECT id, repository_id, pull_request_number, author, state, submitted_at,
		       created_at, updated_at
		FROM reviews
		WHERE repository_id = ? AND submitted_at >= ? AND submitted_at < ?
		ORDER BY submitted_at
	`

	rows, err := r.db.Query(query, repositoryID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		var review models.Review
		err := rows.Scan(
			&review.ID, &review.RepositoryID, &review.PullRequestNumber, &review.Author, &review.State,
			&review.SubmittedAt, &review.CreatedAt, &review.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}

	return reviews, nil
}

// GetAuthorsInRange retrieves the distinct reviewers active in a window
func (r *ReviewRepository) GetAuthorsInRange(repositoryID, start, end string) ([]string, error) {
	query := `
		SELECT DISTINCT author FROM reviews
		WHERE repository_id = ? AND submitted_at >= ? AND submitted_at < ?
	`
	return queryStrings(r.db, query, repositoryID, start, end)
}
