package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity timestamps coming from GitHub are stored as RFC3339 strings
// so that half-open date-range filters reduce to lexicographic
// comparisons, both in SQL and in the calculators.

// PullRequest represents a GitHub pull request
type PullRequest struct {
	ID              string    `json:"id" db:"id"`
	RepositoryID    string    `json:"repository_id" db:"repository_id"`
	Number          int       `json:"number" db:"number"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	Body            string    `json:"body" db:"body"`
	State           string    `json:"state" db:"state"` // OPEN | CLOSED | MERGED
	Additions       int       `json:"additions" db:"additions"`
	Deletions       int       `json:"deletions" db:"deletions"`
	ChangedFiles    int       `json:"changed_files" db:"changed_files"`
	GithubCreatedAt string    `json:"github_created_at" db:"github_created_at"`
	MergedAt        *string   `json:"merged_at" db:"merged_at"`
	ClosedAt        *string   `json:"closed_at" db:"closed_at"`
	FilePaths       []string  `json:"file_paths,omitempty" db:"-"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Merged reports whether the pull request was merged
func (pr *PullRequest) Merged() bool {
	return pr.MergedAt != nil && *pr.MergedAt != ""
}

// CreatedDay returns the YYYY-MM-DD day the pull request was opened,
// the key used for the per-day scoring cap.
func (pr *PullRequest) CreatedDay() string {
	if len(pr.GithubCreatedAt) < 10 {
		return pr.GithubCreatedAt
	}
	return pr.GithubCreatedAt[:10]
}

// NewPullRequest creates a pull request row with a generated UUID
func NewPullRequest(repositoryID string, number int) *PullRequest {
	now := time.Now()
	return &PullRequest{
		ID:           uuid.New().String(),
		RepositoryID: repositoryID,
		Number:       number,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Issue represents a GitHub issue
type Issue struct {
	ID              string    `json:"id" db:"id"`
	RepositoryID    string    `json:"repository_id" db:"repository_id"`
	Number          int       `json:"number" db:"number"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	State           string    `json:"state" db:"state"` // OPEN | CLOSED
	CommentCount    int       `json:"comment_count" db:"comment_count"`
	GithubCreatedAt string    `json:"github_created_at" db:"github_created_at"`
	ClosedAt        *string   `json:"closed_at" db:"closed_at"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// NewIssue creates an issue row with a generated UUID
func NewIssue(repositoryID string, number int) *Issue {
	now := time.Now()
	return &Issue{
		ID:           uuid.New().String(),
		RepositoryID: repositoryID,
		Number:       number,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Review represents a GitHub pull request review
type Review struct {
	ID                string    `json:"id" db:"id"`
	RepositoryID      string    `json:"repository_id" db:"repository_id"`
	PullRequestNumber int       `json:"pull_request_number" db:"pull_request_number"`
	Author            string    `json:"author" db:"author"`
	State             string    `json:"state" db:"state"` // APPROVED | CHANGES_REQUESTED | COMMENTED
	SubmittedAt       string    `json:"submitted_at" db:"submitted_at"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// NewReview creates a review row with a generated UUID
func NewReview(repositoryID string, prNumber int) *Review {
	now := time.Now()
	return &Review{
		ID:                uuid.New().String(),
		RepositoryID:      repositoryID,
		PullRequestNumber: prNumber,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// CommentParent identifies the kind of thread a comment belongs to
type CommentParent string

const (
	CommentParentPullRequest CommentParent = "pull_request"
	CommentParentIssue       CommentParent = "issue"
)

// Comment represents a PR or issue comment
type Comment struct {
	ID              string        `json:"id" db:"id"`
	RepositoryID    string        `json:"repository_id" db:"repository_id"`
	Author          string        `json:"author" db:"author"`
	ParentKind      CommentParent `json:"parent_kind" db:"parent_kind"`
	ParentNumber    int           `json:"parent_number" db:"parent_number"`
	GithubCreatedAt string        `json:"github_created_at" db:"github_created_at"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// NewComment creates a comment row with a generated UUID
func NewComment(repositoryID string, kind CommentParent, parentNumber int) *Comment {
	now := time.Now()
	return &Comment{
		ID:           uuid.New().String(),
		RepositoryID: repositoryID,
		ParentKind:   kind,
		ParentNumber: parentNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Commit represents a commit on the default branch
type Commit struct {
	ID           string    `json:"id" db:"id"`
	RepositoryID string    `json:"repository_id" db:"repository_id"`
	SHA          string    `json:"sha" db:"sha"`
	Author       string    `json:"author" db:"author"`
	Message      string    `json:"message" db:"message"`
	Additions    int       `json:"additions" db:"additions"`
	Deletions    int       `json:"deletions" db:"deletions"`
	ChangedFiles int       `json:"changed_files" db:"changed_files"`
	CommittedAt  string    `json:"committed_at" db:"committed_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewCommit creates a commit row with a generated UUID
func NewCommit(repositoryID, sha string) *Commit {
	now := time.Now()
	return &Commit{
		ID:           uuid.New().String(),
		RepositoryID: repositoryID,
		SHA:          sha,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
