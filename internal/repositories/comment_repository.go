package repositories

import (
	"database/sql"

	"github.com/xR0am/contribpulse/internal/models"
)

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Upsert creates or updates a comment row
func (r *CommentRepository) Upsert(comment *models.Comment) error {
	query := `
		INSERT INTO comments (
			id, repository_id, author, parent_kind, parent_number, github_created_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query,
		comment.ID, comment.RepositoryID, comment.Author, comment.ParentKind, comment.ParentNumber,
		comment.GithubCreatedAt, comment.CreatedAt, comment.UpdatedAt,
	)

	return err
}

// GetByRepositoryAndDateRange retrieves comments created within [start, end)
func (r *CommentRepository) GetByRepositoryAndDateRange(repositoryID, start, end string) ([]*models.Comment, error) {
	query := `
		SELECT id, repository_id, author, parent_kind, parent_number, github_created_at,
		       created_at, updated_at
		FROM comments
		WHERE repository_id = ? AND github_created_at >= ? AND github_created_at < ?
		ORDER BY github_created_at
	`

	rows, err := r.db.Query(query, repositoryID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var comment models.Comment
		err := rows.Scan(
			&comment.ID, &comment.RepositoryID, &comment.Author, &comment.ParentKind, &comment.ParentNumber,
			&comment.GithubCreatedAt, &comment.CreatedAt, &comment.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, &comment)
	}

	return comments, nil
}

// GetAuthorsInRange retrieves the distinct commenters active in a window
func (r *CommentRepository) GetAuthorsInRange(repositoryID, start, end string) ([]string, error) {
	query := `
		SELECT DISTINCT author FROM comments
		WHERE repository_id = ? AND github_created_at >= ? AND github_created_at < ?
	`
	return queryStrings(r.db, query, repositoryID, start, end)
}
