package repositories

import (
	"database/sql"

	"github.com/xR0am/contribpulse/internal/models"
)

type TagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

// UpsertTag registers a tag definition, refreshing last_updated when it
// already exists.
func (r *TagRepository) UpsertTag(name string, category models.TagCategory) error {
	query := `
		INSERT INTO tags (name, category)
		VALUES (?, ?)
		ON CONFLICT(name)
		DO UPDATE SET
			category = EXCLUDED.category,
			last_updated = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query, name, category)
	return err
}

// GetTags retrieves the shared tag registry
func (r *TagRepository) GetTags() ([]*models.Tag, error) {
	query := `SELECT name, category, created_at, last_updated FROM tags ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.Name, &tag.Category, &tag.CreatedAt, &tag.LastUpdated); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}

	return tags, nil
}

// UpsertUserTagScore creates or overwrites a contributor's tag score
func (r *TagRepository) UpsertUserTagScore(score *models.UserTagScore) error {
	query := `
		INSERT INTO user_tag_scores (
			id, username, tag, score, level, progress, points_to_next,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET
			score = EXCLUDED.score,
			level = EXCLUDED.level,
			progress = EXCLUDED.progress,
			points_to_next = EXCLUDED.points_to_next,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query,
		score.ID, score.Username, score.Tag, score.Score, score.Level, score.Progress, score.PointsToNext,
		score.CreatedAt, score.UpdatedAt,
	)

	return err
}

// GetByUsername retrieves a contributor's tag scores, strongest first
func (r *TagRepository) GetByUsername(username string) ([]*models.UserTagScore, error) {
	query := `
		SELECT id, username, tag, score, level, progress, points_to_next,
		       created_at, updated_at
		FROM user_tag_scores
		WHERE username = ?
		ORDER BY score DESC, tag
	`

	rows, err := r.db.Query(query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*models.UserTagScore
	for rows.Next() {
		var score models.UserTagScore
		err := rows.Scan(
			&score.ID, &score.Username, &score.Tag, &score.Score, &score.Level, &score.Progress,
			&score.PointsToNext, &score.CreatedAt, &score.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		scores = append(scores, &score)
	}

	return scores, nil
}

// GetByID retrieves one tag score row by its composite ID
func (r *TagRepository) GetByID(id string) (*models.UserTagScore, error) {
	query := `
		SELECT id, username, tag, score, level, progress, points_to_next,
		       created_at, updated_at
		FROM user_tag_scores WHERE id = ?
	`

	var score models.UserTagScore
	err := r.db.QueryRow(query, id).Scan(
		&score.ID, &score.Username, &score.Tag, &score.Score, &score.Level, &score.Progress,
		&score.PointsToNext, &score.CreatedAt, &score.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &score, nil
}
