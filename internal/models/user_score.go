package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xR0am/contribpulse/pkg/logger"
)

// ScoreCategory is the interval type a score row belongs to. Daily rows
// are the only rows ever computed from raw activity; weekly and monthly
// figures are sums over daily rows.
const ScoreCategoryDay = "day"

// UserDailyScore represents one contributor's computed score for one day
type UserDailyScore struct {
	ID           string    `json:"id" db:"id"` // username_date_category
	Username     string    `json:"username" db:"username"`
	Date         string    `json:"date" db:"date"` // YYYY-MM-DD
	Category     string    `json:"category" db:"category"`
	Score        float64   `json:"score" db:"score"`
	PRScore      float64   `json:"pr_score" db:"pr_score"`
	IssueScore   float64   `json:"issue_score" db:"issue_score"`
	ReviewScore  float64   `json:"review_score" db:"review_score"`
	CommentScore float64   `json:"comment_score" db:"comment_score"`
	Metrics      string    `json:"metrics" db:"metrics"` // JSON UserScoreMetrics
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserScoreID builds the deterministic composite row ID
func UserScoreID(username, date, category string) string {
	return fmt.Sprintf("%s_%s_%s", username, date, category)
}

// NewUserDailyScore creates a daily score row keyed by (username, date)
func NewUserDailyScore(username, date string) *UserDailyScore {
	now := time.Now()
	return &UserDailyScore{
		ID:        UserScoreID(username, date, ScoreCategoryDay),
		Username:  username,
		Date:      date,
		Category:  ScoreCategoryDay,
		Metrics:   "{}",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the identity fields
func (s *UserDailyScore) Validate() error {
	if s.Username == "" {
		return errors.New("username is required")
	}
	if s.Date == "" {
		return errors.New("date is required")
	}
	if s.Category == "" {
		return errors.New("category is required")
	}
	if s.ID != UserScoreID(s.Username, s.Date, s.Category) {
		return errors.New("score ID does not match its identity fields")
	}
	return nil
}

// DecodeMetrics parses the row's stored metrics JSON into its expected
// shape. Display data never fails a read: a malformed or wrong-shaped
// payload logs a warning and yields zero-value metrics.
func (s *UserDailyScore) DecodeMetrics() UserScoreMetrics {
	var m UserScoreMetrics
	if s.Metrics == "" {
		return m
	}

	dec := json.NewDecoder(strings.NewReader(s.Metrics))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		logger.WithError(err).WithField("score_id", s.ID).Warn("Malformed score metrics, using zero values")
		return UserScoreMetrics{}
	}
	return m
}

// UserScoreMetrics is the structured activity snapshot persisted next to
// the score. It is display data, kept separate from the score itself.
type UserScoreMetrics struct {
	PullRequests PullRequestMetrics `json:"pull_requests"`
	Issues       IssueMetrics       `json:"issues"`
	Reviews      ReviewMetrics      `json:"reviews"`
	Comments     CommentMetrics     `json:"comments"`
	CodeChanges  CodeChangeMetrics  `json:"code_changes"`
}

type PullRequestMetrics struct {
	Total  int `json:"total"`
	Merged int `json:"merged"`
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

type IssueMetrics struct {
	Total  int `json:"total"`
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

type ReviewMetrics struct {
	Total            int `json:"total"`
	Approved         int `json:"approved"`
	ChangesRequested int `json:"changes_requested"`
	Commented        int `json:"commented"`
}

type CommentMetrics struct {
	Total        int `json:"total"`
	PullRequests int `json:"pull_requests"`
	Issues       int `json:"issues"`
}

type CodeChangeMetrics struct {
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`
	Commits      int `json:"commits"`
}
