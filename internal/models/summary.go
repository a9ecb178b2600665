package models

import (
	"fmt"
	"time"
)

// RepoSummary is a narrative summary of one repository's activity in one
// interval. Written once per (repo, intervalType, date) unless the run
// sets the overwrite flag.
type RepoSummary struct {
	ID           string    `json:"id" db:"id"` // repoID_intervalType_date
	RepositoryID string    `json:"repository_id" db:"repository_id"`
	IntervalType string    `json:"interval_type" db:"interval_type"`
	Date         string    `json:"date" db:"date"`
	Summary      string    `json:"summary" db:"summary"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserSummary is the per-contributor counterpart of RepoSummary
type UserSummary struct {
	ID           string    `json:"id" db:"id"` // username_intervalType_date
	Username     string    `json:"username" db:"username"`
	IntervalType string    `json:"interval_type" db:"interval_type"`
	Date         string    `json:"date" db:"date"`
	Summary      string    `json:"summary" db:"summary"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SummaryID builds the deterministic composite row ID shared by repo and
// user summaries.
func SummaryID(entity, intervalType, date string) string {
	return fmt.Sprintf("%s_%s_%s", entity, intervalType, date)
}

// NewRepoSummary creates a repo summary row
func NewRepoSummary(repositoryID, intervalType, date, summary string) *RepoSummary {
	now := time.Now()
	return &RepoSummary{
		ID:           SummaryID(repositoryID, intervalType, date),
		RepositoryID: repositoryID,
		IntervalType: intervalType,
		Date:         date,
		Summary:      summary,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewUserSummary creates a user summary row
func NewUserSummary(username, intervalType, date, summary string) *UserSummary {
	now := time.Now()
	return &UserSummary{
		ID:           SummaryID(username, intervalType, date),
		Username:     username,
		IntervalType: intervalType,
		Date:         date,
		Summary:      summary,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
