package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/pkg/logger"
)

// GitHubService ingests repository activity from the GitHub API into
// the local store. Ingestion is idempotent: every row is an upsert
// keyed by its natural GitHub identity, so re-running a window never
// duplicates anything.
type GitHubService struct {
	client          *github.Client
	repositoryRepo  *repositories.RepositoryRepository
	pullRequestRepo *repositories.PullRequestRepository
	issueRepo       *repositories.IssueRepository
	reviewRepo      *repositories.ReviewRepository
	commentRepo     *repositories.CommentRepository
	commitRepo      *repositories.CommitRepository
	log             *logrus.Entry
}

func NewGitHubService(
	token string,
	repositoryRepo *repositories.RepositoryRepository,
	pullRequestRepo *repositories.PullRequestRepository,
	issueRepo *repositories.IssueRepository,
	reviewRepo *repositories.ReviewRepository,
	commentRepo *repositories.CommentRepository,
	commitRepo *repositories.CommitRepository,
) *GitHubService {
	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	))

	return &GitHubService{
		client:          github.NewClient(httpClient),
		repositoryRepo:  repositoryRepo,
		pullRequestRepo: pullRequestRepo,
		issueRepo:       issueRepo,
		reviewRepo:      reviewRepo,
		commentRepo:     commentRepo,
		commitRepo:      commitRepo,
		log:             logger.WithComponent("github"),
	}
}

// IngestStats counts the rows one ingestion run touched.
type IngestStats struct {
	PullRequests int
	Issues       int
	Reviews      int
	Comments     int
	Commits      int
}

// IngestRepository fetches and stores all activity of one repository
// created at or after the cutoff. The repository row itself is
// upserted and stamped on success.
func (s *GitHubService) IngestRepository(ctx context.Context, repo *models.Repository, since time.Time) (*IngestStats, error) {
	if err := repo.Validate(); err != nil {
		return nil, err
	}
	owner, name := repo.Owner(), repo.Name()
	log := s.log.WithField("repository", repo.ID)

	if err := s.repositoryRepo.Upsert(repo); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", repo.ID, err)
	}

	stats := &IngestStats{}

	prNumbers, err := s.ingestPullRequests(ctx, owner, name, repo.ID, since, stats)
	if err != nil {
		return stats, fmt.Errorf("ingest %s: pull requests: %w", repo.ID, err)
	}
	if err := s.ingestIssues(ctx, owner, name, repo.ID, since, stats); err != nil {
		return stats, fmt.Errorf("ingest %s: issues: %w", repo.ID, err)
	}
	if err := s.ingestComments(ctx, owner, name, repo.ID, since, prNumbers, stats); err != nil {
		return stats, fmt.Errorf("ingest %s: comments: %w", repo.ID, err)
	}
	if err := s.ingestCommits(ctx, owner, name, repo.ID, repo.DefaultBranch, since, stats); err != nil {
		return stats, fmt.Errorf("ingest %s: commits: %w", repo.ID, err)
	}

	if err := s.repositoryRepo.MarkIngested(repo.ID, time.Now()); err != nil {
		return stats, fmt.Errorf("ingest %s: %w", repo.ID, err)
	}

	log.WithFields(logrus.Fields{
		"pull_requests": stats.PullRequests,
		"issues":        stats.Issues,
		"reviews":       stats.Reviews,
		"comments":      stats.Comments,
		"commits":       stats.Commits,
	}).Info("repository ingested")

	return stats, nil
}

// ingestPullRequests stores PRs, their file lists and their reviews.
// Returns the set of PR numbers seen, used later to classify comments.
func (s *GitHubService) ingestPullRequests(ctx context.Context, owner, name, repoID string, since time.Time, stats *IngestStats) (map[int]bool, error) {
	prNumbers := make(map[int]bool)

	opt := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		prs, resp, err := s.client.PullRequests.List(ctx, owner, name, opt)
		if err != nil {
			return prNumbers, fmt.Errorf("list: %w", err)
		}

		reachedCutoff := false
		for _, pr := range prs {
			if pr.GetCreatedAt().Time.Before(since) {
				reachedCutoff = true
				continue
			}
			prNumbers[pr.GetNumber()] = true
			if err := s.storePullRequest(ctx, owner, name, repoID, pr, stats); err != nil {
				s.log.WithError(err).WithField("number", pr.GetNumber()).Error("failed to store pull request")
			}
		}

		if reachedCutoff || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	return prNumbers, nil
}

func (s *GitHubService) storePullRequest(ctx context.Context, owner, name, repoID string, pr *github.PullRequest, stats *IngestStats) error {
	row := models.NewPullRequest(repoID, pr.GetNumber())
	row.Title = pr.GetTitle()
	row.Author = pr.GetUser().GetLogin()
	row.Body = pr.GetBody()
	row.GithubCreatedAt = pr.GetCreatedAt().Format(time.RFC3339)

	switch {
	case pr.MergedAt != nil:
		row.State = "MERGED"
		mergedAt := pr.GetMergedAt().Format(time.RFC3339)
		row.MergedAt = &mergedAt
	case pr.GetState() == "closed":
		row.State = "CLOSED"
	default:
		row.State = "OPEN"
	}
	if pr.ClosedAt != nil {
		closedAt := pr.GetClosedAt().Format(time.RFC3339)
		row.ClosedAt = &closedAt
	}

	paths, additions, deletions, err := s.fetchFiles(ctx, owner, name, pr.GetNumber())
	if err != nil {
		return fmt.Errorf("files: %w", err)
	}
	row.Additions = additions
	row.Deletions = deletions
	row.ChangedFiles = len(paths)

	if err := s.pullRequestRepo.Upsert(row); err != nil {
		return err
	}
	if err := s.pullRequestRepo.ReplaceFiles(repoID, row.Number, paths); err != nil {
		return err
	}
	stats.PullRequests++

	return s.ingestReviews(ctx, owner, name, repoID, pr.GetNumber(), stats)
}

func (s *GitHubService) fetchFiles(ctx context.Context, owner, name string, number int) ([]string, int, int, error) {
	var paths []string
	var additions, deletions int

	opt := &github.ListOptions{PerPage: 100}
	for {
		files, resp, err := s.client.PullRequests.ListFiles(ctx, owner, name, number, opt)
		if err != nil {
			return nil, 0, 0, err
		}
		for _, file := range files {
			paths = append(paths, file.GetFilename())
			additions += file.GetAdditions()
			deletions += file.GetDeletions()
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	return paths, additions, deletions, nil
}

func (s *GitHubService) ingestReviews(ctx context.Context, owner, name, repoID string, number int, stats *IngestStats) error {
	opt := &github.ListOptions{PerPage: 100}
	for {
		reviews, resp, err := s.client.PullRequests.ListReviews(ctx, owner, name, number, opt)
		if err != nil {
			return err
		}
		for _, review := range reviews {
			row := models.NewReview(repoID, number)
			row.Author = review.GetUser().GetLogin()
			row.State = review.GetState()
			row.SubmittedAt = review.GetSubmittedAt().Format(time.RFC3339)
			if err := s.reviewRepo.Upsert(row); err != nil {
				return err
			}
			stats.Reviews++
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return nil
}

func (s *GitHubService) ingestIssues(ctx context.Context, owner, name, repoID string, since time.Time, stats *IngestStats) error {
	opt := &github.IssueListByRepoOptions{
		State:       "all",
		Since:       since,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		issues, resp, err := s.client.Issues.ListByRepo(ctx, owner, name, opt)
		if err != nil {
			return err
		}
		for _, issue := range issues {
			// The issues endpoint returns PRs too; those are already
			// ingested with their full detail.
			if issue.IsPullRequest() {
				continue
			}
			if issue.GetCreatedAt().Time.Before(since) {
				continue
			}

			row := models.NewIssue(repoID, issue.GetNumber())
			row.Title = issue.GetTitle()
			row.Author = issue.GetUser().GetLogin()
			row.CommentCount = issue.GetComments()
			row.GithubCreatedAt = issue.GetCreatedAt().Format(time.RFC3339)
			if issue.GetState() == "closed" {
				row.State = "CLOSED"
				if issue.ClosedAt != nil {
					closedAt := issue.GetClosedAt().Format(time.RFC3339)
					row.ClosedAt = &closedAt
				}
			} else {
				row.State = "OPEN"
			}

			if err := s.issueRepo.Upsert(row); err != nil {
				return err
			}
			stats.Issues++
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return nil
}

// ingestComments walks the repo-wide issue comment stream. Comments on
// pull requests arrive through the same endpoint; the parent kind is
// resolved against the PR numbers seen during PR ingestion.
func (s *GitHubService) ingestComments(ctx context.Context, owner, name, repoID string, since time.Time, prNumbers map[int]bool, stats *IngestStats) error {
	sort := "created"
	opt := &github.IssueListCommentsOptions{
		Sort:        &sort,
		Since:       &since,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		comments, resp, err := s.client.Issues.ListComments(ctx, owner, name, 0, opt)
		if err != nil {
			return err
		}
		for _, comment := range comments {
			number := issueNumberFromURL(comment.GetIssueURL())
			kind := models.CommentParentIssue
			if prNumbers[number] {
				kind = models.CommentParentPullRequest
			}

			row := models.NewComment(repoID, kind, number)
			row.Author = comment.GetUser().GetLogin()
			row.GithubCreatedAt = comment.GetCreatedAt().Format(time.RFC3339)
			if err := s.commentRepo.Upsert(row); err != nil {
				return err
			}
			stats.Comments++
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return nil
}

func (s *GitHubService) ingestCommits(ctx context.Context, owner, name, repoID, branch string, since time.Time, stats *IngestStats) error {
	opt := &github.CommitsListOptions{
		SHA:         branch,
		Since:       since,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		commits, resp, err := s.client.Repositories.ListCommits(ctx, owner, name, opt)
		if err != nil {
			return err
		}
		for _, commit := range commits {
			row := models.NewCommit(repoID, commit.GetSHA())
			row.Author = commit.GetAuthor().GetLogin()
			row.Message = commit.GetCommit().GetMessage()
			row.CommittedAt = commit.GetCommit().GetCommitter().GetDate().Format(time.RFC3339)

			// The list endpoint carries no stats; fetch per commit.
			detail, _, err := s.client.Repositories.GetCommit(ctx, owner, name, commit.GetSHA(), nil)
			if err == nil {
				row.Additions = detail.GetStats().GetAdditions()
				row.Deletions = detail.GetStats().GetDeletions()
				row.ChangedFiles = len(detail.Files)
			} else {
				s.log.WithError(err).WithField("sha", commit.GetSHA()).Warn("commit stats unavailable")
			}

			if err := s.commitRepo.Upsert(row); err != nil {
				return err
			}
			stats.Commits++
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return nil
}

// issueNumberFromURL extracts the trailing number of an API issue URL.
func issueNumberFromURL(url string) int {
	idx := strings.LastIndex(url, "/")
	if idx < 0 {
		return 0
	}
	number, err := strconv.Atoi(url[idx+1:])
	if err != nil {
		return 0
	}
	return number
}
