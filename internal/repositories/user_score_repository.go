package repositories

import (
	"database/sql"

	"github.com/xR0am/contribpulse/internal/models"
)

type UserScoreRepository struct {
	db *sql.DB
}

func NewUserScoreRepository(db *sql.DB) *UserScoreRepository {
	return &UserScoreRepository{db: db}
}

// Upsert creates or overwrites a daily score row. Identity columns are
// never touched on conflict; only the computed values move.
func (r *UserScoreRepository) Upsert(score *models.UserDailyScore) error {
	query := `
		INSERT INTO user_daily_scores (
			id, username, date, category,
			score, pr_score, issue_score, review_score, comment_score, metrics,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET
			score = EXCLUDED.score,
			pr_score = EXCLUDED.pr_score,
			issue_score = EXCLUDED.issue_score,
			review_score = EXCLUDED.review_score,
			comment_score = EXCLUDED.comment_score,
			metrics = EXCLUDED.metrics,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query,
		score.ID, score.Username, score.Date, score.Category,
		score.Score, score.PRScore, score.IssueScore, score.ReviewScore, score.CommentScore, score.Metrics,
		score.CreatedAt, score.UpdatedAt,
	)

	return err
}

// GetByID retrieves a score row by its composite ID
func (r *UserScoreRepository) GetByID(id string) (*models.UserDailyScore, error) {
	query := `
		SELECT id, username, date, category,
		       score, pr_score, issue_score, review_score, comment_score, metrics,
		       created_at, updated_at
		FROM user_daily_scores WHERE id = ?
	`

	var score models.UserDailyScore
	err := r.db.QueryRow(query, id).Scan(
		&score.ID, &score.Username, &score.Date, &score.Category,
		&score.Score, &score.PRScore, &score.IssueScore, &score.ReviewScore, &score.CommentScore, &score.Metrics,
		&score.CreatedAt, &score.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &score, nil
}

// GetByUsernameAndRange retrieves a contributor's daily rows within
// [start, end), newest first.
func (r *UserScoreRepository) GetByUsernameAndRange(username, start, end string) ([]*models.UserDailyScore, error) {
	query := `
		SELECT id, username, date, category,
		       score, pr_score, issue_score, review_score, comment_score, metrics,
		       created_at, updated_at
		FROM user_daily_scores
		WHERE username = ? AND date >= ? AND date < ?
		ORDER BY date DESC
	`

	rows, err := r.db.Query(query, username, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScores(rows)
}

// SumForRange aggregates a contributor's component scores over [start, end).
// Weekly and monthly figures are always sums over daily rows.
func (r *UserScoreRepository) SumForRange(username, start, end string) (*models.UserDailyScore, error) {
	query := `
		SELECT COALESCE(SUM(score), 0), COALESCE(SUM(pr_score), 0), COALESCE(SUM(issue_score), 0),
		       COALESCE(SUM(review_score), 0), COALESCE(SUM(comment_score), 0)
		FROM user_daily_scores
		WHERE username = ? AND date >= ? AND date < ?
	`

	sum := &models.UserDailyScore{Username: username, Date: start}
	err := r.db.QueryRow(query, username, start, end).Scan(
		&sum.Score, &sum.PRScore, &sum.IssueScore, &sum.ReviewScore, &sum.CommentScore,
	)
	if err != nil {
		return nil, err
	}

	return sum, nil
}

// LeaderboardEntry is one aggregated leaderboard row
type LeaderboardEntry struct {
	Username string  `json:"username"`
	Score    float64 `json:"score"`
	Days     int     `json:"days"`
}

// GetLeaderboard aggregates total scores per contributor over [start, end)
func (r *UserScoreRepository) GetLeaderboard(start, end string, limit int) ([]*LeaderboardEntry, error) {
	query := `
		SELECT username, SUM(score) AS total, COUNT(*) AS days
		FROM user_daily_scores
		WHERE date >= ? AND date < ?
		GROUP BY username
		ORDER BY total DESC, username
		LIMIT ?
	`

	rows, err := r.db.Query(query, start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*LeaderboardEntry
	for rows.Next() {
		var entry LeaderboardEntry
		if err := rows.Scan(&entry.Username, &entry.Score, &entry.Days); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

func scanScores(rows *sql.Rows) ([]*models.UserDailyScore, error) {
	var scores []*models.UserDailyScore
	for rows.Next() {
		var score models.UserDailyScore
		err := rows.Scan(
			&score.ID, &score.Username, &score.Date, &score.Category,
			&score.Score, &score.PRScore, &score.IssueScore, &score.ReviewScore, &score.CommentScore, &score.Metrics,
			&score.CreatedAt, &score.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		scores = append(scores, &score)
	}
	return scores, nil
}
