package models

import (
	"errors"
	"strings"
	"time"
)

// Repository represents a GitHub repository selected for processing.
// The ID is the canonical "owner/name" slug.
type Repository struct {
	ID             string     `json:"id" db:"id"`
	DefaultBranch  string     `json:"default_branch" db:"default_branch"`
	IsTracked      bool       `json:"is_tracked" db:"is_tracked"`
	LastIngestedAt *time.Time `json:"last_ingested_at" db:"last_ingested_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// NewRepository creates a tracked repository entry
func NewRepository(id, defaultBranch string) *Repository {
	if defaultBranch == "" {
		defaultBranch = "main"
	}
	now := time.Now()
	return &Repository{
		ID:            id,
		DefaultBranch: defaultBranch,
		IsTracked:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate validates the repository slug
func (r *Repository) Validate() error {
	parts := strings.Split(r.ID, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return errors.New("repository ID must be in owner/name form")
	}
	return nil
}

// Owner returns the owner half of the slug
func (r *Repository) Owner() string {
	return strings.SplitN(r.ID, "/", 2)[0]
}

// Name returns the name half of the slug
func (r *Repository) Name() string {
	parts := strings.SplitN(r.ID, "/", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
