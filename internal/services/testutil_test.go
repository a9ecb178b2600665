package services

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/pkg/database"
)

// testStore bundles an in-memory database with every repository the
// service tests need.
type testStore struct {
	db              *sql.DB
	repositoryRepo  *repositories.RepositoryRepository
	pullRequestRepo *repositories.PullRequestRepository
	issueRepo       *repositories.IssueRepository
	reviewRepo      *repositories.ReviewRepository
	commentRepo     *repositories.CommentRepository
	commitRepo      *repositories.CommitRepository
	scoreRepo       *repositories.UserScoreRepository
	tagRepo         *repositories.TagRepository
	summaryRepo     *repositories.SummaryRepository
	jobRepo         *repositories.JobRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.RunSQLScripts(db, "../../migrations"))

	return &testStore{
		db:              db,
		repositoryRepo:  repositories.NewRepositoryRepository(db),
		pullRequestRepo: repositories.NewPullRequestRepository(db),
		issueRepo:       repositories.NewIssueRepository(db),
		reviewRepo:      repositories.NewReviewRepository(db),
		commentRepo:     repositories.NewCommentRepository(db),
		commitRepo:      repositories.NewCommitRepository(db),
		scoreRepo:       repositories.NewUserScoreRepository(db),
		tagRepo:         repositories.NewTagRepository(db),
		summaryRepo:     repositories.NewSummaryRepository(db),
		jobRepo:         repositories.NewJobRepository(db),
	}
}

func (s *testStore) metrics() *MetricsService {
	return NewMetricsService(s.pullRequestRepo, s.issueRepo, s.reviewRepo, s.commentRepo, s.commitRepo)
}

// seedPR inserts a pull request created at noon UTC on the given day.
func (s *testStore) seedPR(t *testing.T, repoID string, number int, author, day, state, title string, paths ...string) {
	t.Helper()

	pr := models.NewPullRequest(repoID, number)
	pr.Author = author
	pr.Title = title
	pr.State = state
	pr.GithubCreatedAt = day + "T12:00:00Z"
	if state == "MERGED" {
		mergedAt := day + "T18:00:00Z"
		pr.MergedAt = &mergedAt
	}
	require.NoError(t, s.pullRequestRepo.Upsert(pr))
	if len(paths) > 0 {
		require.NoError(t, s.pullRequestRepo.ReplaceFiles(repoID, number, paths))
	}
}

func (s *testStore) seedIssue(t *testing.T, repoID string, number int, author, day, state string) {
	t.Helper()

	issue := models.NewIssue(repoID, number)
	issue.Author = author
	issue.Title = "issue"
	issue.State = state
	issue.GithubCreatedAt = day + "T09:00:00Z"
	if state == "CLOSED" {
		closedAt := day + "T17:00:00Z"
		issue.ClosedAt = &closedAt
	}
	require.NoError(t, s.issueRepo.Upsert(issue))
}

func (s *testStore) seedCommit(t *testing.T, repoID, sha, author, day, message string, additions, deletions int) {
	t.Helper()

	commit := models.NewCommit(repoID, sha)
	commit.Author = author
	commit.Message = message
	commit.Additions = additions
	commit.Deletions = deletions
	commit.ChangedFiles = 1
	commit.CommittedAt = day + "T10:00:00Z"
	require.NoError(t, s.commitRepo.Upsert(commit))
}
